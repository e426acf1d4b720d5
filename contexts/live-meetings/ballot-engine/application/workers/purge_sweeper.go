package workers

import (
	"context"
	"log/slog"

	application "ballotroom/contexts/live-meetings/ballot-engine/application"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

// PurgeSweeper reconciles meetings left in completed state with child rows
// still present, which happens when the report cascade fails partway. Every
// cascade stage no-ops on zero matches, so re-running it is always safe.
type PurgeSweeper struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Polls        ports.PollRepository
	Votes        ports.VoteRepository
	Logger       *slog.Logger
}

func (s PurgeSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)

	stuck, err := s.Meetings.ListCompletedMeetings(ctx)
	if err != nil {
		return err
	}

	for _, meeting := range stuck {
		counts, err := application.CascadePurge(ctx, meeting.MeetingID, s.Meetings, s.Participants, s.Polls, s.Votes)
		if err != nil {
			logger.Error("purge sweep failed for meeting",
				"event", "purge_sweep_meeting_failed",
				"module", "live-meetings/ballot-engine",
				"layer", "application",
				"meeting_id", meeting.MeetingID,
				"error", err.Error(),
			)
			continue
		}
		logger.Info("purge sweep reclaimed meeting",
			"event", "purge_sweep_meeting_reclaimed",
			"module", "live-meetings/ballot-engine",
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"votes_removed", counts.Votes,
			"polls_removed", counts.Polls,
			"participants_removed", counts.Participants,
		)
	}
	return nil
}
