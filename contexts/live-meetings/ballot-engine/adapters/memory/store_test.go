package memory

import (
	"context"
	"testing"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
)

func TestDeleteMeetingReportsAffectedRows(t *testing.T) {
	store := NewStore()
	if err := store.InsertMeeting(context.Background(), entities.Meeting{
		MeetingID: "meeting-1",
		Title:     "Sync",
		Code:      "CAFE1234",
		Status:    entities.MeetingStatusActive,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	removed, err := store.DeleteMeeting(context.Background(), "meeting-1")
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 row removed, got %d (%v)", removed, err)
	}

	// Delete-by-filter semantics: a second pass matches nothing and succeeds.
	removed, err = store.DeleteMeeting(context.Background(), "meeting-1")
	if err != nil || removed != 0 {
		t.Fatalf("expected 0 rows removed, got %d (%v)", removed, err)
	}
}

func TestDeleteVotesByPollsHandlesEmptySet(t *testing.T) {
	store := NewStore()
	removed, err := store.DeleteVotesByPolls(context.Background(), nil)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op on empty set, got %d (%v)", removed, err)
	}
}

func TestGetPollReturnsDetachedOptions(t *testing.T) {
	store := NewStore()
	if err := store.InsertPoll(context.Background(), entities.Poll{
		PollID:    "poll-1",
		MeetingID: "meeting-1",
		Question:  "Q",
		Options:   []entities.PollOption{{OptionID: "a", Label: "Yes"}},
		Status:    entities.PollStatusDraft,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first, err := store.GetPoll(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Options[0].Votes = 42

	second, err := store.GetPoll(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Options[0].Votes != 0 {
		t.Fatal("mutating a read copy must not leak into the store")
	}
}
