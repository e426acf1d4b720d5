package queries

import (
	"context"
	"strings"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

type ParticipantQueries struct {
	Participants ports.ParticipantRepository
}

func (q ParticipantQueries) StatusOf(ctx context.Context, participantID string) (entities.ParticipantStatus, error) {
	participant, err := q.Participants.GetParticipant(ctx, strings.TrimSpace(participantID))
	if err != nil {
		return "", err
	}
	return participant.Status, nil
}
