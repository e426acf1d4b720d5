package pdfadapter

import (
	"bytes"
	"context"
	"testing"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

func TestRenderProducesPDF(t *testing.T) {
	now := time.Now().UTC()
	snapshot := ports.ReportSnapshot{
		Meeting: entities.Meeting{
			MeetingID:     "meeting-1",
			Title:         "Quarterly Sync",
			OrganizerName: "Alex",
			Code:          "CAFE1234",
			Status:        entities.MeetingStatusCompleted,
			CreatedAt:     now,
		},
		Participants: []entities.Participant{
			{ParticipantID: "p1", Name: "Dana", MeetingID: "meeting-1", Status: entities.ParticipantStatusApproved, JoinedAt: now},
		},
		Polls: []entities.PollResults{
			{
				PollID:   "poll-1",
				Question: "Ship on Friday?",
				Results: []entities.OptionResult{
					{OptionID: "a", Label: "Yes", Votes: 2, Percentage: 66.7},
					{OptionID: "b", Label: "No", Votes: 1, Percentage: 33.3},
				},
				TotalVotes: 3,
			},
		},
		GrandTotal:  3,
		GeneratedAt: now,
	}

	artifact, err := Renderer{}.Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(artifact, []byte("%PDF")) {
		t.Fatal("expected a PDF artifact")
	}
}

func TestRenderHandlesEmptyMeeting(t *testing.T) {
	snapshot := ports.ReportSnapshot{
		Meeting: entities.Meeting{
			MeetingID:     "meeting-1",
			Title:         "Empty",
			OrganizerName: "Alex",
			Code:          "CAFE1234",
			Status:        entities.MeetingStatusCompleted,
		},
		Polls: []entities.PollResults{
			{PollID: "poll-1", Question: "Anyone?", Results: []entities.OptionResult{{OptionID: "a", Label: "Yes"}}},
		},
		GeneratedAt: time.Now().UTC(),
	}

	artifact, err := Renderer{}.Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(artifact) == 0 {
		t.Fatal("expected report bytes")
	}
}
