package notifications

import "context"

type SendInviteLinkInput struct {
	MembershipID string
	Email        string
	ProjectName  string
	Link         string
}

// Notifier hands an invitation link to the invitee. Implementations must be
// safe for concurrent use.
type Notifier interface {
	SendInviteLink(ctx context.Context, input SendInviteLinkInput) error
}
