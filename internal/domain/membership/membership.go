package membership

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusInvited  Status = "invited"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

var (
	ErrInvalidInvite = errors.New("invalid invite")
	// ErrInviteAlreadyRedeemed matches ErrInvalidInvite under errors.Is.
	ErrInviteAlreadyRedeemed = fmt.Errorf("%w: already redeemed", ErrInvalidInvite)
)

// Membership ties an employee (or a pending invite email) to a project.
type Membership struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	UserID      *string   `json:"userId,omitempty"`
	InviteEmail string    `json:"inviteEmail"`
	InviteToken string    `json:"-"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Invitation is what a manager gets back after issuing an invite.
type Invitation struct {
	Membership
	Token string `json:"token"`
	Link  string `json:"link"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type RedeemRequest struct {
	Token string `json:"token" binding:"required,min=16,max=128"`
}

// AcceptPath builds the relative accept link for a token.
func AcceptPath(token string) string {
	return "/accept-invite?token=" + token
}
