package queries

import (
	"context"
	"strings"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

type ResultsQueries struct {
	Polls ports.PollRepository
	Votes ports.VoteRepository
}

// ListPolls returns every poll of a meeting regardless of status. The
// show_results_real_time flag only gates what a non-organizer UI renders
// while a poll is active; it never gates data access here.
func (q ResultsQueries) ListPolls(ctx context.Context, meetingID string) ([]entities.Poll, error) {
	return q.Polls.ListPollsByMeeting(ctx, strings.TrimSpace(meetingID))
}

// Results forces a tally recompute before responding, so a caller never sees
// counts that lag the vote log.
func (q ResultsQueries) Results(ctx context.Context, pollID string) (entities.PollResults, error) {
	poll, err := q.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.PollResults{}, err
	}
	refreshed, err := application.RecomputeTally(ctx, poll, q.Votes, q.Polls)
	if err != nil {
		return entities.PollResults{}, err
	}
	return application.BuildResults(refreshed), nil
}
