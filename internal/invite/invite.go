// Package invite issues and redeems single-use project invitation tokens.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/timehub/internal/actorctx"
	"github.com/geocoder89/timehub/internal/domain/job"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/jobs"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/security"
	"github.com/google/uuid"
)

var tracer = observability.Tracer("timehub/invite")

type ProjectOwnership interface {
	GetOwned(ctx context.Context, managerID, projectID string) (project.Project, error)
}

type MembershipStore interface {
	CreateInvite(ctx context.Context, m membership.Membership, outbox job.CreateRequest) (job.Job, error)
	Redeem(ctx context.Context, token, userID string) (membership.Membership, error)
	ListByProject(ctx context.Context, projectID string) ([]membership.Membership, error)
}

type Service struct {
	projects    ProjectOwnership
	memberships MembershipStore
	baseURL     string
	newToken    func() (string, error)
	prom        *observability.Prom
	log         *slog.Logger
}

// NewService builds the workflow. baseURL prefixes accept links, e.g.
// "https://timehub.example.com".
func NewService(projects ProjectOwnership, memberships MembershipStore, baseURL string, prom *observability.Prom, log *slog.Logger) *Service {
	return &Service{
		projects:    projects,
		memberships: memberships,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		newToken:    security.NewInviteToken,
		prom:        prom,
		log:         log,
	}
}

// Issue creates an invited membership for email on a project the manager
// owns, and queues the accept link for delivery in the same transaction.
func (s *Service) Issue(ctx context.Context, managerID, projectID, email string) (membership.Invitation, error) {
	ctx, span := tracer.Start(ctx, "invite.Issue")
	defer span.End()

	p, err := s.projects.GetOwned(ctx, managerID, projectID)
	if err != nil {
		s.prom.ObserveInvite("issue", "rejected")
		return membership.Invitation{}, err
	}

	token, err := s.newToken()
	if err != nil {
		return membership.Invitation{}, fmt.Errorf("generate invite token: %w", err)
	}

	now := time.Now().UTC()
	m := membership.Membership{
		ID:          uuid.NewString(),
		ProjectID:   p.ID,
		InviteEmail: strings.ToLower(strings.TrimSpace(email)),
		InviteToken: token,
		Status:      membership.StatusInvited,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	link := s.baseURL + membership.AcceptPath(token)
	requestID, _ := actorctx.RequestIDFrom(ctx)

	outbox, err := jobs.NewCreateRequest(jobs.JobSendInviteLink, jobs.SendInviteLinkPayload{
		MembershipID: m.ID,
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		Email:        m.InviteEmail,
		Link:         link,
		InvitedBy:    managerID,
		RequestID:    requestID,
	}, "invite:"+m.ID)
	if err != nil {
		return membership.Invitation{}, err
	}

	queued, err := s.memberships.CreateInvite(ctx, m, outbox)
	if err != nil {
		return membership.Invitation{}, err
	}

	s.prom.ObserveInvite("issue", "issued")
	s.log.InfoContext(ctx, "invite issued",
		"project_id", p.ID,
		"membership_id", m.ID,
		"email", m.InviteEmail,
		"job_id", queued.ID,
	)

	return membership.Invitation{Membership: m, Token: token, Link: link}, nil
}

// Redeem binds identityID to the invitation behind token. The invite email is
// not compared with the redeemer's email; a mismatch is only logged.
func (s *Service) Redeem(ctx context.Context, identityID, email, token string) (membership.Membership, error) {
	ctx, span := tracer.Start(ctx, "invite.Redeem")
	defer span.End()

	token = strings.TrimSpace(token)
	if identityID == "" {
		return membership.Membership{}, errors.New("redeem requires an authenticated identity")
	}
	if token == "" {
		s.prom.ObserveInvite("redeem", "rejected")
		return membership.Membership{}, membership.ErrInvalidInvite
	}

	m, err := s.memberships.Redeem(ctx, token, identityID)
	if err != nil {
		if errors.Is(err, membership.ErrInvalidInvite) {
			s.prom.ObserveInvite("redeem", "rejected")
			s.log.InfoContext(ctx, "invite redeem rejected", "identity_id", identityID, "err", err)
		}
		return membership.Membership{}, err
	}

	if email != "" && !strings.EqualFold(email, m.InviteEmail) {
		s.log.WarnContext(ctx, "invite redeemed by a different email",
			"membership_id", m.ID,
			"invite_email", m.InviteEmail,
			"redeemer_email", email,
		)
	}

	s.prom.ObserveInvite("redeem", "redeemed")
	return m, nil
}

// ListForProject returns every invitation on a project the manager owns.
func (s *Service) ListForProject(ctx context.Context, managerID, projectID string) ([]membership.Membership, error) {
	if _, err := s.projects.GetOwned(ctx, managerID, projectID); err != nil {
		return nil, err
	}
	return s.memberships.ListByProject(ctx, projectID)
}
