package ports

import (
	"context"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/internal/shared/events"
)

type MeetingRepository interface {
	InsertMeeting(ctx context.Context, meeting entities.Meeting) error
	GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error)
	// GetActiveMeetingByCode resolves a join code against active meetings only.
	GetActiveMeetingByCode(ctx context.Context, code string) (entities.Meeting, bool, error)
	ListCompletedMeetings(ctx context.Context) ([]entities.Meeting, error)
	MarkMeetingCompleted(ctx context.Context, meetingID string, completedAt time.Time) error
	DeleteMeeting(ctx context.Context, meetingID string) (int64, error)
}

type ParticipantRepository interface {
	InsertParticipant(ctx context.Context, participant entities.Participant) error
	GetParticipant(ctx context.Context, participantID string) (entities.Participant, error)
	// FindParticipantByName matches regardless of approval status; a rejected
	// name still blocks reuse.
	FindParticipantByName(ctx context.Context, meetingID string, name string) (entities.Participant, bool, error)
	ListParticipantsByMeeting(ctx context.Context, meetingID string) ([]entities.Participant, error)
	UpdateParticipantStatus(ctx context.Context, participantID string, status entities.ParticipantStatus) error
	DeleteParticipantsByMeeting(ctx context.Context, meetingID string) (int64, error)
}

type PollRepository interface {
	InsertPoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	ListPollsByMeeting(ctx context.Context, meetingID string) ([]entities.Poll, error)
	UpdatePollStatus(ctx context.Context, pollID string, status entities.PollStatus, timerStartedAt *time.Time) error
	// UpdatePollOptionCounts rewrites every option's count from the tally map;
	// options absent from the map are reset to zero.
	UpdatePollOptionCounts(ctx context.Context, pollID string, counts map[string]int) error
	DeletePollsByMeeting(ctx context.Context, meetingID string) (int64, error)
}

type VoteRepository interface {
	InsertVote(ctx context.Context, vote entities.Vote) error
	ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error)
	DeleteVotesByPolls(ctx context.Context, pollIDs []string) (int64, error)
}

// EventPublisher is the live fan-out collaborator. Delivery is best effort:
// implementations must never return transport failures to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, meetingID string, envelope events.Envelope)
}

// ReportSnapshot is everything the renderer needs; it is assembled before any
// deletion so the artifact survives a failed cascade.
type ReportSnapshot struct {
	Meeting      entities.Meeting
	Participants []entities.Participant
	Polls        []entities.PollResults
	GrandTotal   int
	GeneratedAt  time.Time
}

type ReportRenderer interface {
	Render(ctx context.Context, snapshot ReportSnapshot) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CodeGenerator issues short human-shareable join codes. Collisions are rare
// but possible; callers must check against active meetings and retry.
type CodeGenerator interface {
	NewCode(ctx context.Context) (string, error)
}
