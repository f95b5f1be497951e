package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobSendInviteLink:
		var p SendInviteLinkPayload
		switch v := payload.(type) {
		case SendInviteLinkPayload:
			p = v
		case *SendInviteLinkPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.MembershipID) == "" || trim(p.Email) == "" || trim(p.Link) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
