package entities

import "time"

type MeetingStatus string

const (
	MeetingStatusActive    MeetingStatus = "active"
	MeetingStatusCompleted MeetingStatus = "completed"
)

// Meeting is the root aggregate. Participants, polls and votes never
// outlive it; the purge workflow is the only deletion path.
type Meeting struct {
	MeetingID     string
	Title         string
	OrganizerName string
	Code          string
	Status        MeetingStatus
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "pending"
	ParticipantStatusApproved ParticipantStatus = "approved"
	ParticipantStatusRejected ParticipantStatus = "rejected"
)

type Participant struct {
	ParticipantID string
	Name          string
	MeetingID     string
	Status        ParticipantStatus
	JoinedAt      time.Time
}

type PollStatus string

const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

// PollOption carries a derived vote count. The vote log is authoritative;
// counts are rewritten from it on every tally pass.
type PollOption struct {
	OptionID string
	Label    string
	Votes    int
}

type Poll struct {
	PollID              string
	MeetingID           string
	Question            string
	Options             []PollOption
	Status              PollStatus
	TimerDuration       *int
	TimerStartedAt      *time.Time
	ShowResultsRealTime bool
	CreatedAt           time.Time
}

// HasOption reports whether optionID belongs to the poll's current option set.
func (p Poll) HasOption(optionID string) bool {
	for _, option := range p.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}

// Vote deliberately carries no participant reference. That absence is the
// anonymity guarantee and must never be added back, even for audit purposes.
type Vote struct {
	VoteID   string
	PollID   string
	OptionID string
	VotedAt  time.Time
}

// OptionResult is one row of a computed tally.
type OptionResult struct {
	OptionID   string
	Label      string
	Votes      int
	Percentage float64
}

type PollResults struct {
	PollID     string
	Question   string
	Results    []OptionResult
	TotalVotes int
}
