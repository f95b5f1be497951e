package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// LogNotifier writes the accept link to the log instead of sending email.
type LogNotifier struct {
	log   *slog.Logger
	delay time.Duration
	fail  bool
}

type LogNotifierConfig struct {
	// Delay simulates a slow provider.
	Delay time.Duration
	// Fail simulates a provider outage.
	Fail bool
}

func NewLogNotifier(log *slog.Logger, cfg LogNotifierConfig) *LogNotifier {
	return &LogNotifier{log: log, delay: cfg.Delay, fail: cfg.Fail}
}

func (n *LogNotifier) SendInviteLink(ctx context.Context, in SendInviteLinkInput) error {
	if n.delay > 0 {
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if n.fail {
		return errors.New("provider down (simulated)")
	}

	n.log.InfoContext(ctx, "notification.invite_link",
		"email", in.Email,
		"project", in.ProjectName,
		"membership_id", in.MembershipID,
		"link", in.Link,
	)
	return nil
}
