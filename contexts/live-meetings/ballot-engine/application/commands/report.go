package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

// ReportUseCase is the terminal operation for a meeting: snapshot final
// state into a rendered artifact, mark the meeting completed, then cascade
// deletion of every record the meeting owns.
type ReportUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Polls        ports.PollRepository
	Votes        ports.VoteRepository
	Renderer     ports.ReportRenderer
	Clock        ports.Clock
	Logger       *slog.Logger
}

// GenerateReport renders the final report and purges the meeting. The
// completed mark lands before any deletion: if the cascade fails partway
// there is at least a record that the report was produced, and the purge
// sweeper finishes the job later.
func (uc ReportUseCase) GenerateReport(ctx context.Context, meetingID string) ([]byte, error) {
	logger := application.ResolveLogger(uc.Logger)

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return nil, err
	}

	participants, err := uc.Participants.ListParticipantsByMeeting(ctx, meeting.MeetingID)
	if err != nil {
		return nil, err
	}
	polls, err := uc.Polls.ListPollsByMeeting(ctx, meeting.MeetingID)
	if err != nil {
		return nil, err
	}

	// Final tallies come from a forced recompute so the report never reflects
	// a stale count.
	grandTotal := 0
	finalPolls := make([]entities.PollResults, 0, len(polls))
	for _, poll := range polls {
		refreshed, err := application.RecomputeTally(ctx, poll, uc.Votes, uc.Polls)
		if err != nil {
			return nil, err
		}
		results := application.BuildResults(refreshed)
		grandTotal += results.TotalVotes
		finalPolls = append(finalPolls, results)
	}

	approved := make([]entities.Participant, 0, len(participants))
	for _, participant := range participants {
		if participant.Status == entities.ParticipantStatusApproved {
			approved = append(approved, participant)
		}
	}

	now := uc.Clock.Now().UTC()
	artifact, err := uc.Renderer.Render(ctx, ports.ReportSnapshot{
		Meeting:      meeting,
		Participants: approved,
		Polls:        finalPolls,
		GrandTotal:   grandTotal,
		GeneratedAt:  now,
	})
	if err != nil {
		logger.Error("report rendering failed",
			"event", "report_render_failed",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrReportRenderFailed, err)
	}

	if err := uc.Meetings.MarkMeetingCompleted(ctx, meeting.MeetingID, now); err != nil {
		return nil, err
	}

	counts, err := application.CascadePurge(ctx, meeting.MeetingID, uc.Meetings, uc.Participants, uc.Polls, uc.Votes)
	if err != nil {
		logger.Error("meeting purge failed mid-cascade",
			"event", "meeting_purge_failed",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"votes_removed", counts.Votes,
			"polls_removed", counts.Polls,
			"participants_removed", counts.Participants,
			"meetings_removed", counts.Meetings,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrPurgeIncomplete, err)
	}

	logger.Info("meeting reported and purged",
		"event", "meeting_reported_and_purged",
		"module", "live-meetings/ballot-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"votes_removed", counts.Votes,
		"polls_removed", counts.Polls,
		"participants_removed", counts.Participants,
	)
	return artifact, nil
}
