package events

import "time"

// Event types delivered to live meeting viewers.
const (
	TypeParticipantJoined   = "participant_joined"
	TypeParticipantApproved = "participant_approved"
	TypePollStarted         = "poll_started"
	TypePollClosed          = "poll_closed"
	TypeVoteSubmitted       = "vote_submitted"
)

// Envelope is the shared event shape pushed over the live channel.
// A missed delivery is superseded by the client's next full-state fetch,
// so the envelope carries a complete snapshot of the affected entity.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"type"`
	MeetingID     string    `json:"meeting_id"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	Payload       any       `json:"payload"`
}
