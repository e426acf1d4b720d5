package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
	"ballotroom/internal/shared/events"
)

// CreatePollCommand is the write-model input for poll creation.
type CreatePollCommand struct {
	MeetingID           string
	Question            string
	OptionLabels        []string
	TimerDuration       *int
	ShowResultsRealTime bool
}

// PollUseCase owns the poll lifecycle: draft on creation, active on start,
// closed on close. The configured timer is advisory metadata only; elapsing
// never closes a poll, and closing a draft is permitted.
type PollUseCase struct {
	Meetings  ports.MeetingRepository
	Polls     ports.PollRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)

	question := strings.TrimSpace(cmd.Question)
	labels := make([]string, 0, len(cmd.OptionLabels))
	for _, label := range cmd.OptionLabels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	if question == "" || len(labels) == 0 {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.Poll{}, err
	}

	pollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	options := make([]entities.PollOption, 0, len(labels))
	for _, label := range labels {
		optionID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Poll{}, err
		}
		options = append(options, entities.PollOption{OptionID: optionID, Label: label, Votes: 0})
	}

	poll := entities.Poll{
		PollID:              pollID,
		MeetingID:           meeting.MeetingID,
		Question:            question,
		Options:             options,
		Status:              entities.PollStatusDraft,
		TimerDuration:       cmd.TimerDuration,
		ShowResultsRealTime: cmd.ShowResultsRealTime,
		CreatedAt:           uc.Clock.Now().UTC(),
	}
	if err := uc.Polls.InsertPoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"poll_id", poll.PollID,
		"options", len(options),
	)
	return poll, nil
}

func (uc PollUseCase) StartPoll(ctx context.Context, pollID string) error {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return err
	}

	// timer_started_at is stamped only when a duration was configured.
	var timerStartedAt *time.Time
	if poll.TimerDuration != nil {
		now := uc.Clock.Now().UTC()
		timerStartedAt = &now
	}
	if err := uc.Polls.UpdatePollStatus(ctx, poll.PollID, entities.PollStatusActive, timerStartedAt); err != nil {
		return err
	}
	poll.Status = entities.PollStatusActive
	poll.TimerStartedAt = timerStartedAt

	logger.Info("poll started",
		"event", "poll_started",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", poll.MeetingID,
		"poll_id", poll.PollID,
	)
	publishEvent(ctx, uc.Publisher, uc.IDGen, uc.Clock.Now(), poll.MeetingID,
		events.TypePollStarted, pollPayload(poll))
	return nil
}

func (uc PollUseCase) ClosePoll(ctx context.Context, pollID string) error {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return err
	}

	// Closing is unconditional; a draft poll closes the same way an active
	// one does.
	if err := uc.Polls.UpdatePollStatus(ctx, poll.PollID, entities.PollStatusClosed, poll.TimerStartedAt); err != nil {
		return err
	}
	poll.Status = entities.PollStatusClosed

	logger.Info("poll closed",
		"event", "poll_closed",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", poll.MeetingID,
		"poll_id", poll.PollID,
	)
	publishEvent(ctx, uc.Publisher, uc.IDGen, uc.Clock.Now(), poll.MeetingID,
		events.TypePollClosed, pollPayload(poll))
	return nil
}
