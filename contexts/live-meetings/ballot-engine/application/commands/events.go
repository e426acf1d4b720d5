package commands

import (
	"context"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
	"ballotroom/internal/shared/events"
)

// Snapshot payloads carried inside live-channel envelopes. Viewers treat a
// missed event as superseded by their next full-state fetch, so every payload
// is a complete snapshot of the affected entity.

type ParticipantPayload struct {
	ParticipantID string    `json:"id"`
	Name          string    `json:"name"`
	MeetingID     string    `json:"meeting_id"`
	Status        string    `json:"approval_status"`
	JoinedAt      time.Time `json:"joined_at"`
}

type ParticipantDecisionPayload struct {
	ParticipantID string `json:"participant_id"`
	Status        string `json:"status"`
}

type PollOptionPayload struct {
	OptionID string `json:"id"`
	Label    string `json:"text"`
	Votes    int    `json:"votes"`
}

type PollPayload struct {
	PollID              string              `json:"id"`
	MeetingID           string              `json:"meeting_id"`
	Question            string              `json:"question"`
	Status              string              `json:"status"`
	Options             []PollOptionPayload `json:"options"`
	TimerDuration       *int                `json:"timer_duration,omitempty"`
	TimerStartedAt      *time.Time          `json:"timer_started_at,omitempty"`
	ShowResultsRealTime bool                `json:"show_results_real_time"`
}

func participantPayload(participant entities.Participant) ParticipantPayload {
	return ParticipantPayload{
		ParticipantID: participant.ParticipantID,
		Name:          participant.Name,
		MeetingID:     participant.MeetingID,
		Status:        string(participant.Status),
		JoinedAt:      participant.JoinedAt,
	}
}

func pollPayload(poll entities.Poll) PollPayload {
	options := make([]PollOptionPayload, 0, len(poll.Options))
	for _, option := range poll.Options {
		options = append(options, PollOptionPayload{
			OptionID: option.OptionID,
			Label:    option.Label,
			Votes:    option.Votes,
		})
	}
	return PollPayload{
		PollID:              poll.PollID,
		MeetingID:           poll.MeetingID,
		Question:            poll.Question,
		Status:              string(poll.Status),
		Options:             options,
		TimerDuration:       poll.TimerDuration,
		TimerStartedAt:      poll.TimerStartedAt,
		ShowResultsRealTime: poll.ShowResultsRealTime,
	}
}

// publishEvent is fire-and-forget: the hub swallows per-connection delivery
// failures and event id generation never blocks the write path.
func publishEvent(
	ctx context.Context,
	publisher ports.EventPublisher,
	idGen ports.IDGenerator,
	now time.Time,
	meetingID string,
	eventType string,
	payload any,
) {
	if publisher == nil {
		return
	}
	eventID := ""
	if idGen != nil {
		if id, err := idGen.NewID(ctx); err == nil {
			eventID = id
		}
	}
	publisher.Publish(ctx, meetingID, events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		MeetingID:     meetingID,
		OccurredAtUTC: now.UTC(),
		Payload:       payload,
	})
}
