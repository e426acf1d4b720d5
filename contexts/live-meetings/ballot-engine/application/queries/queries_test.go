package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/adapters/memory"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
)

func seedPollWithVotes(t *testing.T, store *memory.Store, votesPerOption []int) entities.Poll {
	t.Helper()
	options := make([]entities.PollOption, len(votesPerOption))
	for i := range votesPerOption {
		options[i] = entities.PollOption{OptionID: string(rune('a' + i)), Label: "Option"}
	}
	poll := entities.Poll{
		PollID:    "poll-1",
		MeetingID: "meeting-1",
		Question:  "Pick one",
		Options:   options,
		Status:    entities.PollStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertPoll(context.Background(), poll); err != nil {
		t.Fatalf("insert poll failed: %v", err)
	}

	seq := 0
	for i, count := range votesPerOption {
		for j := 0; j < count; j++ {
			seq++
			vote := entities.Vote{
				VoteID:   string(rune('a'+i)) + "-" + string(rune('0'+j)),
				PollID:   poll.PollID,
				OptionID: options[i].OptionID,
				VotedAt:  time.Now().UTC().Add(time.Duration(seq) * time.Millisecond),
			}
			if err := store.InsertVote(context.Background(), vote); err != nil {
				t.Fatalf("insert vote failed: %v", err)
			}
		}
	}
	return poll
}

func TestResultsRoundEachPercentageIndependently(t *testing.T) {
	store := memory.NewStore()
	poll := seedPollWithVotes(t, store, []int{1, 1, 1})

	q := ResultsQueries{Polls: store, Votes: store}
	results, err := q.Results(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}

	if results.TotalVotes != 3 {
		t.Fatalf("expected total 3, got %d", results.TotalVotes)
	}
	// Three-way split rounds to 33.3 each; the sum lands at 99.9 on purpose.
	for _, result := range results.Results {
		if result.Percentage != 33.3 {
			t.Fatalf("expected 33.3 for every option, got %v", result.Percentage)
		}
	}
}

func TestResultsZeroVotesReportZeroPercentages(t *testing.T) {
	store := memory.NewStore()
	poll := seedPollWithVotes(t, store, []int{0, 0})

	q := ResultsQueries{Polls: store, Votes: store}
	results, err := q.Results(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}

	if results.TotalVotes != 0 {
		t.Fatalf("expected total 0, got %d", results.TotalVotes)
	}
	for _, result := range results.Results {
		if result.Percentage != 0 || result.Votes != 0 {
			t.Fatalf("expected zeroed result, got %+v", result)
		}
	}
}

func TestResultsRecomputeOverridesStaleCounts(t *testing.T) {
	store := memory.NewStore()
	poll := seedPollWithVotes(t, store, []int{2, 0})

	// Corrupt the denormalized counts; the query must heal them from the log.
	if err := store.UpdatePollOptionCounts(context.Background(), poll.PollID, map[string]int{poll.Options[0].OptionID: 99}); err != nil {
		t.Fatalf("corrupt counts failed: %v", err)
	}

	q := ResultsQueries{Polls: store, Votes: store}
	results, err := q.Results(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Results[0].Votes != 2 {
		t.Fatalf("expected recomputed count 2, got %d", results.Results[0].Votes)
	}
	if results.Results[0].Percentage != 100 {
		t.Fatalf("expected 100 percent, got %v", results.Results[0].Percentage)
	}
}

func TestResultsUnknownPoll(t *testing.T) {
	store := memory.NewStore()
	q := ResultsQueries{Polls: store, Votes: store}
	_, err := q.Results(context.Background(), "missing")
	if !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected poll not found, got %v", err)
	}
}
