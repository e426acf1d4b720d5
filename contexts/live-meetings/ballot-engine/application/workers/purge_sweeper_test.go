package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/adapters/memory"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
)

func seedStuckMeeting(t *testing.T, store *memory.Store, meetingID string) {
	t.Helper()
	now := time.Now().UTC()
	meeting := entities.Meeting{
		MeetingID:     meetingID,
		Title:         "Stuck",
		OrganizerName: "Alex",
		Code:          "DEADBEEF",
		Status:        entities.MeetingStatusCompleted,
		CreatedAt:     now,
		CompletedAt:   &now,
	}
	if err := store.InsertMeeting(context.Background(), meeting); err != nil {
		t.Fatalf("insert meeting failed: %v", err)
	}
	if err := store.InsertParticipant(context.Background(), entities.Participant{
		ParticipantID: meetingID + "-p1",
		Name:          "Dana",
		MeetingID:     meetingID,
		Status:        entities.ParticipantStatusApproved,
		JoinedAt:      now,
	}); err != nil {
		t.Fatalf("insert participant failed: %v", err)
	}
	if err := store.InsertPoll(context.Background(), entities.Poll{
		PollID:    meetingID + "-poll",
		MeetingID: meetingID,
		Question:  "Leftover?",
		Options:   []entities.PollOption{{OptionID: meetingID + "-opt", Label: "Yes"}},
		Status:    entities.PollStatusClosed,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("insert poll failed: %v", err)
	}
	if err := store.InsertVote(context.Background(), entities.Vote{
		VoteID:   meetingID + "-vote",
		PollID:   meetingID + "-poll",
		OptionID: meetingID + "-opt",
		VotedAt:  now,
	}); err != nil {
		t.Fatalf("insert vote failed: %v", err)
	}
}

func TestRunOnceReclaimsCompletedMeetings(t *testing.T) {
	store := memory.NewStore()
	seedStuckMeeting(t, store, "meeting-stuck")

	// An active meeting must never be touched by the sweep.
	if err := store.InsertMeeting(context.Background(), entities.Meeting{
		MeetingID:     "meeting-live",
		Title:         "Live",
		OrganizerName: "Sam",
		Code:          "CAFE1234",
		Status:        entities.MeetingStatusActive,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert active meeting failed: %v", err)
	}

	sweeper := PurgeSweeper{Meetings: store, Participants: store, Polls: store, Votes: store}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if _, err := store.GetMeeting(context.Background(), "meeting-stuck"); !errors.Is(err, domainerrors.ErrMeetingNotFound) {
		t.Fatalf("expected stuck meeting reclaimed, got %v", err)
	}
	participants, _ := store.ListParticipantsByMeeting(context.Background(), "meeting-stuck")
	if len(participants) != 0 {
		t.Fatalf("expected participants purged, got %d", len(participants))
	}
	if store.VoteCount("meeting-stuck-poll") != 0 {
		t.Fatal("expected votes purged")
	}

	if _, err := store.GetMeeting(context.Background(), "meeting-live"); err != nil {
		t.Fatalf("active meeting must survive the sweep: %v", err)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	seedStuckMeeting(t, store, "meeting-stuck")

	sweeper := PurgeSweeper{Meetings: store, Participants: store, Polls: store, Votes: store}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
}
