package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

const defaultCodeAttempts = 5

// CreateMeetingCommand is the write-model input for meeting creation.
type CreateMeetingCommand struct {
	Title         string
	OrganizerName string
}

// MeetingUseCase allocates meetings and their join codes. A code is only
// required to be unique among currently active meetings; purged meetings
// free their code for reuse because the record is deleted, not archived.
type MeetingUseCase struct {
	Meetings     ports.MeetingRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Codes        ports.CodeGenerator
	CodeAttempts int
	Logger       *slog.Logger
}

func (uc MeetingUseCase) CreateMeeting(ctx context.Context, cmd CreateMeetingCommand) (entities.Meeting, error) {
	logger := application.ResolveLogger(uc.Logger)

	title := strings.TrimSpace(cmd.Title)
	organizer := strings.TrimSpace(cmd.OrganizerName)
	if title == "" || organizer == "" {
		logger.Warn("meeting create validation failed",
			"event", "meeting_create_validation_failed",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
		)
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}

	meetingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Meeting{}, err
	}

	attempts := uc.CodeAttempts
	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}

	// The code alphabet makes collisions negligible but not impossible, so
	// every candidate is checked against active meetings before insert.
	for attempt := 0; attempt < attempts; attempt++ {
		code, err := uc.Codes.NewCode(ctx)
		if err != nil {
			return entities.Meeting{}, err
		}
		if _, taken, err := uc.Meetings.GetActiveMeetingByCode(ctx, code); err != nil {
			return entities.Meeting{}, err
		} else if taken {
			logger.Warn("meeting code collision, regenerating",
				"event", "meeting_code_collision",
				"module", "live-meetings/ballot-engine",
				"layer", "application",
				"attempt", attempt+1,
			)
			continue
		}

		meeting := entities.Meeting{
			MeetingID:     meetingID,
			Title:         title,
			OrganizerName: organizer,
			Code:          code,
			Status:        entities.MeetingStatusActive,
			CreatedAt:     uc.Clock.Now().UTC(),
		}
		if err := uc.Meetings.InsertMeeting(ctx, meeting); err != nil {
			return entities.Meeting{}, err
		}

		logger.Info("meeting created",
			"event", "meeting_created",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"code", meeting.Code,
		)
		return meeting, nil
	}

	logger.Error("meeting code generation exhausted attempts",
		"event", "meeting_code_attempts_exhausted",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"attempts", attempts,
	)
	return entities.Meeting{}, domainerrors.ErrCodeCollision
}
