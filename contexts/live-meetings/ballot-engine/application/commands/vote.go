package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
	"ballotroom/internal/shared/events"
)

// SubmitVoteCommand casts one anonymous ballot. There is deliberately no
// participant field here and none may ever be added.
type SubmitVoteCommand struct {
	PollID   string
	OptionID string
}

// VoteUseCase appends anonymous votes and keeps option counts reconciled
// against the vote log via full recomputation after every insert.
type VoteUseCase struct {
	Polls     ports.PollRepository
	Votes     ports.VoteRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc VoteUseCase) SubmitVote(ctx context.Context, cmd SubmitVoteCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(cmd.PollID))
	if err != nil {
		return err
	}
	if poll.Status != entities.PollStatusActive {
		logger.Warn("vote rejected, poll not active",
			"event", "vote_rejected_poll_not_active",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"poll_id", poll.PollID,
			"status", string(poll.Status),
		)
		return domainerrors.ErrPollNotActive
	}
	optionID := strings.TrimSpace(cmd.OptionID)
	if !poll.HasOption(optionID) {
		return domainerrors.ErrUnknownOption
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	vote := entities.Vote{
		VoteID:   voteID,
		PollID:   poll.PollID,
		OptionID: optionID,
		VotedAt:  uc.Clock.Now().UTC(),
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		return err
	}

	refreshed, err := application.RecomputeTally(ctx, poll, uc.Votes, uc.Polls)
	if err != nil {
		return err
	}

	logger.Info("vote submitted",
		"event", "vote_submitted",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", poll.MeetingID,
		"poll_id", poll.PollID,
	)
	publishEvent(ctx, uc.Publisher, uc.IDGen, uc.Clock.Now(), poll.MeetingID,
		events.TypeVoteSubmitted, pollPayload(refreshed))
	return nil
}
