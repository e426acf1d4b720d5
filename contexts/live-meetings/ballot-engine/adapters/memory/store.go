package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runtime. It
// implements every repository port plus Clock, IDGenerator and
// CodeGenerator, mirroring how the postgres adapter is wired.
type Store struct {
	mu sync.RWMutex

	meetings     map[string]entities.Meeting
	participants map[string]entities.Participant
	polls        map[string]entities.Poll
	votes        map[string]entities.Vote
}

func NewStore() *Store {
	return &Store{
		meetings:     make(map[string]entities.Meeting),
		participants: make(map[string]entities.Participant),
		polls:        make(map[string]entities.Poll),
		votes:        make(map[string]entities.Vote),
	}
}

func (s *Store) InsertMeeting(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[strings.TrimSpace(meeting.MeetingID)] = meeting
	return nil
}

func (s *Store) GetMeeting(_ context.Context, meetingID string) (entities.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return entities.Meeting{}, domainerrors.ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *Store) GetActiveMeetingByCode(_ context.Context, code string) (entities.Meeting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trimmed := strings.TrimSpace(code)
	for _, meeting := range s.meetings {
		if meeting.Code == trimmed && meeting.Status == entities.MeetingStatusActive {
			return meeting, true, nil
		}
	}
	return entities.Meeting{}, false, nil
}

func (s *Store) ListCompletedMeetings(_ context.Context) ([]entities.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var completed []entities.Meeting
	for _, meeting := range s.meetings {
		if meeting.Status == entities.MeetingStatusCompleted {
			completed = append(completed, meeting)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CreatedAt.Before(completed[j].CreatedAt)
	})
	return completed, nil
}

func (s *Store) MarkMeetingCompleted(_ context.Context, meetingID string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return domainerrors.ErrMeetingNotFound
	}
	at := completedAt.UTC()
	meeting.Status = entities.MeetingStatusCompleted
	meeting.CompletedAt = &at
	s.meetings[meeting.MeetingID] = meeting
	return nil
}

func (s *Store) DeleteMeeting(_ context.Context, meetingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trimmed := strings.TrimSpace(meetingID)
	if _, ok := s.meetings[trimmed]; !ok {
		return 0, nil
	}
	delete(s.meetings, trimmed)
	return 1, nil
}

func (s *Store) InsertParticipant(_ context.Context, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[strings.TrimSpace(participant.ParticipantID)] = participant
	return nil
}

func (s *Store) GetParticipant(_ context.Context, participantID string) (entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[strings.TrimSpace(participantID)]
	if !ok {
		return entities.Participant{}, domainerrors.ErrParticipantNotFound
	}
	return participant, nil
}

func (s *Store) FindParticipantByName(_ context.Context, meetingID string, name string) (entities.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting := strings.TrimSpace(meetingID)
	for _, participant := range s.participants {
		if participant.MeetingID == meeting && participant.Name == strings.TrimSpace(name) {
			return participant, true, nil
		}
	}
	return entities.Participant{}, false, nil
}

func (s *Store) ListParticipantsByMeeting(_ context.Context, meetingID string) ([]entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting := strings.TrimSpace(meetingID)
	var list []entities.Participant
	for _, participant := range s.participants {
		if participant.MeetingID == meeting {
			list = append(list, participant)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].ParticipantID < list[j].ParticipantID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list, nil
}

func (s *Store) UpdateParticipantStatus(_ context.Context, participantID string, status entities.ParticipantStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[strings.TrimSpace(participantID)]
	if !ok {
		return domainerrors.ErrParticipantNotFound
	}
	participant.Status = status
	s.participants[participant.ParticipantID] = participant
	return nil
}

func (s *Store) DeleteParticipantsByMeeting(_ context.Context, meetingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting := strings.TrimSpace(meetingID)
	var removed int64
	for id, participant := range s.participants {
		if participant.MeetingID == meeting {
			delete(s.participants, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) InsertPoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[strings.TrimSpace(poll.PollID)] = clonePoll(poll)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *Store) ListPollsByMeeting(_ context.Context, meetingID string) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting := strings.TrimSpace(meetingID)
	var list []entities.Poll
	for _, poll := range s.polls {
		if poll.MeetingID == meeting {
			list = append(list, clonePoll(poll))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].PollID < list[j].PollID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) UpdatePollStatus(_ context.Context, pollID string, status entities.PollStatus, timerStartedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	poll.Status = status
	poll.TimerStartedAt = timerStartedAt
	s.polls[poll.PollID] = poll
	return nil
}

func (s *Store) UpdatePollOptionCounts(_ context.Context, pollID string, counts map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	options := make([]entities.PollOption, len(poll.Options))
	for i, option := range poll.Options {
		option.Votes = counts[option.OptionID]
		options[i] = option
	}
	poll.Options = options
	s.polls[poll.PollID] = poll
	return nil
}

func (s *Store) DeletePollsByMeeting(_ context.Context, meetingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting := strings.TrimSpace(meetingID)
	var removed int64
	for id, poll := range s.polls {
		if poll.MeetingID == meeting {
			delete(s.polls, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	return nil
}

func (s *Store) ListVotesByPoll(_ context.Context, pollID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll := strings.TrimSpace(pollID)
	var list []entities.Vote
	for _, vote := range s.votes {
		if vote.PollID == poll {
			list = append(list, vote)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].VotedAt.Equal(list[j].VotedAt) {
			return list[i].VoteID < list[j].VoteID
		}
		return list[i].VotedAt.Before(list[j].VotedAt)
	})
	return list, nil
}

func (s *Store) DeleteVotesByPolls(_ context.Context, pollIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{}, len(pollIDs))
	for _, id := range pollIDs {
		ids[strings.TrimSpace(id)] = struct{}{}
	}
	var removed int64
	for id, vote := range s.votes {
		if _, ok := ids[vote.PollID]; ok {
			delete(s.votes, id)
			removed++
		}
	}
	return removed, nil
}

// VoteCount reports the raw size of a poll's vote log; test helper.
func (s *Store) VoteCount(pollID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.PollID == strings.TrimSpace(pollID) {
			count++
		}
	}
	return count
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// NewCode issues an 8-character upper-hex join code drawn from a fresh uuid.
func (s *Store) NewCode(_ context.Context) (string, error) {
	return strings.ToUpper(uuid.NewString()[:8]), nil
}

func clonePoll(poll entities.Poll) entities.Poll {
	cloned := poll
	cloned.Options = append([]entities.PollOption(nil), poll.Options...)
	return cloned
}
