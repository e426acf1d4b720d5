package application

import (
	"context"

	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

// PurgeStageCounts records how many rows each cascade stage removed, so an
// operator can reconcile a partial failure from the logs.
type PurgeStageCounts struct {
	Votes        int64
	Polls        int64
	Participants int64
	Meetings     int64
}

// CascadePurge deletes everything a meeting owns in strict dependency order:
// votes referencing the meeting's polls, then polls, then participants, then
// the meeting record itself. Every stage is a delete-by-filter that no-ops on
// zero matches, so re-running against a partially purged meeting is safe.
func CascadePurge(
	ctx context.Context,
	meetingID string,
	meetings ports.MeetingRepository,
	participants ports.ParticipantRepository,
	polls ports.PollRepository,
	votes ports.VoteRepository,
) (PurgeStageCounts, error) {
	var counts PurgeStageCounts

	pollList, err := polls.ListPollsByMeeting(ctx, meetingID)
	if err != nil {
		return counts, err
	}
	pollIDs := make([]string, 0, len(pollList))
	for _, poll := range pollList {
		pollIDs = append(pollIDs, poll.PollID)
	}

	if counts.Votes, err = votes.DeleteVotesByPolls(ctx, pollIDs); err != nil {
		return counts, err
	}
	if counts.Polls, err = polls.DeletePollsByMeeting(ctx, meetingID); err != nil {
		return counts, err
	}
	if counts.Participants, err = participants.DeleteParticipantsByMeeting(ctx, meetingID); err != nil {
		return counts, err
	}
	if counts.Meetings, err = meetings.DeleteMeeting(ctx, meetingID); err != nil {
		return counts, err
	}
	return counts, nil
}
