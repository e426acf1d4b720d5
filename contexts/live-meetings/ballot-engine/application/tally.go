package application

import (
	"context"
	"math"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

// RecomputeTally aggregates the poll's full vote log by option and rewrites
// every option count from that aggregate. Counts are never incremented in
// place: the append-only log is the authority, so a reported count always
// equals the number of vote rows referencing the option, regardless of how
// concurrent submissions interleaved.
func RecomputeTally(
	ctx context.Context,
	poll entities.Poll,
	votes ports.VoteRepository,
	polls ports.PollRepository,
) (entities.Poll, error) {
	rows, err := votes.ListVotesByPoll(ctx, poll.PollID)
	if err != nil {
		return entities.Poll{}, err
	}

	counts := make(map[string]int, len(poll.Options))
	for _, vote := range rows {
		counts[vote.OptionID]++
	}

	if err := polls.UpdatePollOptionCounts(ctx, poll.PollID, counts); err != nil {
		return entities.Poll{}, err
	}

	refreshed := poll
	refreshed.Options = make([]entities.PollOption, len(poll.Options))
	for i, option := range poll.Options {
		option.Votes = counts[option.OptionID]
		refreshed.Options[i] = option
	}
	return refreshed, nil
}

// BuildResults derives per-option percentages from already-recomputed counts.
// Each percentage is rounded to one decimal independently; the sum may land
// at 99.9 or 100.1 and that is accepted, not corrected.
func BuildResults(poll entities.Poll) entities.PollResults {
	total := 0
	for _, option := range poll.Options {
		total += option.Votes
	}

	results := make([]entities.OptionResult, 0, len(poll.Options))
	for _, option := range poll.Options {
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(option.Votes)/float64(total)*1000) / 10
		}
		results = append(results, entities.OptionResult{
			OptionID:   option.OptionID,
			Label:      option.Label,
			Votes:      option.Votes,
			Percentage: percentage,
		})
	}

	return entities.PollResults{
		PollID:     poll.PollID,
		Question:   poll.Question,
		Results:    results,
		TotalVotes: total,
	}
}
