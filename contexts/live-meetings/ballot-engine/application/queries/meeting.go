package queries

import (
	"context"
	"strings"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

// OrganizerView is the aggregate read backing the organizer's console.
type OrganizerView struct {
	Meeting      entities.Meeting
	Participants []entities.Participant
	Polls        []entities.Poll
}

type MeetingQueries struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Polls        ports.PollRepository
}

// ResolveByCode succeeds only for active meetings. A completed or purged
// meeting is indistinguishable from one that never existed.
func (q MeetingQueries) ResolveByCode(ctx context.Context, code string) (entities.Meeting, error) {
	meeting, found, err := q.Meetings.GetActiveMeetingByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return entities.Meeting{}, err
	}
	if !found {
		return entities.Meeting{}, domainerrors.ErrMeetingNotFound
	}
	return meeting, nil
}

func (q MeetingQueries) OrganizerView(ctx context.Context, meetingID string) (OrganizerView, error) {
	meeting, err := q.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return OrganizerView{}, err
	}
	participants, err := q.Participants.ListParticipantsByMeeting(ctx, meeting.MeetingID)
	if err != nil {
		return OrganizerView{}, err
	}
	polls, err := q.Polls.ListPollsByMeeting(ctx, meeting.MeetingID)
	if err != nil {
		return OrganizerView{}, err
	}
	return OrganizerView{
		Meeting:      meeting,
		Participants: participants,
		Polls:        polls,
	}, nil
}
