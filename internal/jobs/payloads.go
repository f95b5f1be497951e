package jobs

// SendInviteLinkPayload carries what the worker needs to hand an accept link
// to the notifier. The membership id keys delivery idempotency.
type SendInviteLinkPayload struct {
	MembershipID string `json:"membershipId"`
	ProjectID    string `json:"projectId"`
	ProjectName  string `json:"projectName"`
	Email        string `json:"email"`
	Link         string `json:"link"`
	InvitedBy    string `json:"invitedBy,omitempty"`
	RequestID    string `json:"requestId,omitempty"` // optional: correlation
}
