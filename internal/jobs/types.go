package jobs

type JobType string

const (
	JobSendInviteLink JobType = "send_invite_link"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobSendInviteLink:
		return true
	default:
		return false
	}
}
