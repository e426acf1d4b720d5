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

// JoinMeetingCommand enrolls a participant under the meeting a join code
// resolves to.
type JoinMeetingCommand struct {
	Name string
	Code string
}

// DecideParticipantCommand records the organizer's approval decision.
type DecideParticipantCommand struct {
	ParticipantID string
	Approved      bool
}

// ParticipantUseCase is the approval gate. Names are unique per meeting
// across every status: a rejected name still blocks reuse.
type ParticipantUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Publisher    ports.EventPublisher
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc ParticipantUseCase) Join(ctx context.Context, cmd JoinMeetingCommand) (entities.Participant, error) {
	logger := application.ResolveLogger(uc.Logger)

	name := strings.TrimSpace(cmd.Name)
	code := strings.TrimSpace(cmd.Code)
	if name == "" || code == "" {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}

	meeting, found, err := uc.Meetings.GetActiveMeetingByCode(ctx, code)
	if err != nil {
		return entities.Participant{}, err
	}
	if !found {
		return entities.Participant{}, domainerrors.ErrMeetingNotFound
	}

	if _, taken, err := uc.Participants.FindParticipantByName(ctx, meeting.MeetingID, name); err != nil {
		return entities.Participant{}, err
	} else if taken {
		logger.Warn("participant name already taken",
			"event", "participant_join_name_taken",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"meeting_id", meeting.MeetingID,
		)
		return entities.Participant{}, domainerrors.ErrNameTaken
	}

	participantID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Participant{}, err
	}
	participant := entities.Participant{
		ParticipantID: participantID,
		Name:          name,
		MeetingID:     meeting.MeetingID,
		Status:        entities.ParticipantStatusPending,
		JoinedAt:      uc.Clock.Now().UTC(),
	}
	if err := uc.Participants.InsertParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}

	logger.Info("participant joined",
		"event", "participant_joined",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"participant_id", participant.ParticipantID,
	)
	publishEvent(ctx, uc.Publisher, uc.IDGen, uc.Clock.Now(), meeting.MeetingID,
		events.TypeParticipantJoined, participantPayload(participant))

	return participant, nil
}

func (uc ParticipantUseCase) Decide(ctx context.Context, cmd DecideParticipantCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	participant, err := uc.Participants.GetParticipant(ctx, strings.TrimSpace(cmd.ParticipantID))
	if err != nil {
		return err
	}

	status := entities.ParticipantStatusRejected
	if cmd.Approved {
		status = entities.ParticipantStatusApproved
	}
	if err := uc.Participants.UpdateParticipantStatus(ctx, participant.ParticipantID, status); err != nil {
		return err
	}

	logger.Info("participant decision recorded",
		"event", "participant_decision_recorded",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", participant.MeetingID,
		"participant_id", participant.ParticipantID,
		"status", string(status),
	)
	publishEvent(ctx, uc.Publisher, uc.IDGen, uc.Clock.Now(), participant.MeetingID,
		events.TypeParticipantApproved, ParticipantDecisionPayload{
			ParticipantID: participant.ParticipantID,
			Status:        string(status),
		})

	return nil
}
