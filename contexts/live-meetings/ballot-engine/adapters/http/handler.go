package httpadapter

import (
	"context"
	"log/slog"

	"ballotroom/contexts/live-meetings/ballot-engine/application/commands"
	"ballotroom/contexts/live-meetings/ballot-engine/application/queries"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	httptransport "ballotroom/contexts/live-meetings/ballot-engine/transport/http"
)

type Handler struct {
	Meetings         commands.MeetingUseCase
	Participants     commands.ParticipantUseCase
	Polls            commands.PollUseCase
	Votes            commands.VoteUseCase
	Reports          commands.ReportUseCase
	MeetingViews     queries.MeetingQueries
	ParticipantViews queries.ParticipantQueries
	Results          queries.ResultsQueries
	Logger           *slog.Logger
}

// CreateMeetingHandler godoc
// @Summary Create a meeting
// @Description Creates an active meeting and issues a shareable join code.
// @Tags meetings
// @Accept json
// @Produce json
// @Param request body httptransport.CreateMeetingRequest true "Meeting details"
// @Success 200 {object} httptransport.MeetingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/meetings [post]
func (h Handler) CreateMeetingHandler(ctx context.Context, req httptransport.CreateMeetingRequest) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.CreateMeeting(ctx, commands.CreateMeetingCommand{
		Title:         req.Title,
		OrganizerName: req.OrganizerName,
	})
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return mapMeeting(meeting), nil
}

// ResolveMeetingHandler godoc
// @Summary Resolve a meeting by join code
// @Description Resolves a join code against active meetings only.
// @Tags meetings
// @Produce json
// @Param meeting_code path string true "Join code"
// @Success 200 {object} httptransport.MeetingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/meetings/{meeting_code} [get]
func (h Handler) ResolveMeetingHandler(ctx context.Context, code string) (httptransport.MeetingResponse, error) {
	meeting, err := h.MeetingViews.ResolveByCode(ctx, code)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return mapMeeting(meeting), nil
}

// OrganizerViewHandler godoc
// @Summary Organizer aggregate view
// @Description Returns the meeting plus every participant and poll.
// @Tags meetings
// @Produce json
// @Param meeting_id path string true "Meeting id"
// @Success 200 {object} httptransport.OrganizerViewResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/meetings/{meeting_id}/organizer [get]
func (h Handler) OrganizerViewHandler(ctx context.Context, meetingID string) (httptransport.OrganizerViewResponse, error) {
	view, err := h.MeetingViews.OrganizerView(ctx, meetingID)
	if err != nil {
		return httptransport.OrganizerViewResponse{}, err
	}
	participants := make([]httptransport.ParticipantResponse, 0, len(view.Participants))
	for _, participant := range view.Participants {
		participants = append(participants, mapParticipant(participant))
	}
	polls := make([]httptransport.PollResponse, 0, len(view.Polls))
	for _, poll := range view.Polls {
		polls = append(polls, mapPoll(poll))
	}
	return httptransport.OrganizerViewResponse{
		Meeting:      mapMeeting(view.Meeting),
		Participants: participants,
		Polls:        polls,
	}, nil
}

// JoinMeetingHandler godoc
// @Summary Join a meeting
// @Description Enrolls a pending participant under the meeting the code resolves to.
// @Tags participants
// @Accept json
// @Produce json
// @Param request body httptransport.JoinMeetingRequest true "Join request"
// @Success 200 {object} httptransport.ParticipantResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/participants/join [post]
func (h Handler) JoinMeetingHandler(ctx context.Context, req httptransport.JoinMeetingRequest) (httptransport.ParticipantResponse, error) {
	participant, err := h.Participants.Join(ctx, commands.JoinMeetingCommand{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return mapParticipant(participant), nil
}

// DecideParticipantHandler godoc
// @Summary Approve or reject a participant
// @Tags participants
// @Accept json
// @Produce json
// @Param participant_id path string true "Participant id"
// @Param request body httptransport.DecideParticipantRequest true "Decision"
// @Success 200 {object} httptransport.AckResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/participants/{participant_id}/approve [post]
func (h Handler) DecideParticipantHandler(ctx context.Context, participantID string, req httptransport.DecideParticipantRequest) error {
	return h.Participants.Decide(ctx, commands.DecideParticipantCommand{
		ParticipantID: participantID,
		Approved:      req.Approved,
	})
}

// ParticipantStatusHandler godoc
// @Summary Fetch a participant's approval status
// @Tags participants
// @Produce json
// @Param participant_id path string true "Participant id"
// @Success 200 {object} httptransport.ParticipantStatusResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/participants/{participant_id}/status [get]
func (h Handler) ParticipantStatusHandler(ctx context.Context, participantID string) (httptransport.ParticipantStatusResponse, error) {
	status, err := h.ParticipantViews.StatusOf(ctx, participantID)
	if err != nil {
		return httptransport.ParticipantStatusResponse{}, err
	}
	return httptransport.ParticipantStatusResponse{Status: string(status)}, nil
}

// CreatePollHandler godoc
// @Summary Create a draft poll
// @Tags polls
// @Accept json
// @Produce json
// @Param meeting_id path string true "Meeting id"
// @Param request body httptransport.CreatePollRequest true "Poll details"
// @Success 200 {object} httptransport.PollResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/meetings/{meeting_id}/polls [post]
func (h Handler) CreatePollHandler(ctx context.Context, meetingID string, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		MeetingID:           meetingID,
		Question:            req.Question,
		OptionLabels:        req.Options,
		TimerDuration:       req.TimerDuration,
		ShowResultsRealTime: req.ShowResultsRealTime,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

// ListPollsHandler godoc
// @Summary List a meeting's polls
// @Description Returns every poll regardless of status.
// @Tags polls
// @Produce json
// @Param meeting_id path string true "Meeting id"
// @Success 200 {array} httptransport.PollResponse
// @Router /api/meetings/{meeting_id}/polls [get]
func (h Handler) ListPollsHandler(ctx context.Context, meetingID string) ([]httptransport.PollResponse, error) {
	polls, err := h.Results.ListPolls(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	responses := make([]httptransport.PollResponse, 0, len(polls))
	for _, poll := range polls {
		responses = append(responses, mapPoll(poll))
	}
	return responses, nil
}

// StartPollHandler godoc
// @Summary Start a poll
// @Tags polls
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.AckResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/polls/{poll_id}/start [post]
func (h Handler) StartPollHandler(ctx context.Context, pollID string) error {
	return h.Polls.StartPoll(ctx, pollID)
}

// ClosePollHandler godoc
// @Summary Close a poll
// @Tags polls
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.AckResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/polls/{poll_id}/close [post]
func (h Handler) ClosePollHandler(ctx context.Context, pollID string) error {
	return h.Polls.ClosePoll(ctx, pollID)
}

// SubmitVoteHandler godoc
// @Summary Submit an anonymous vote
// @Tags votes
// @Accept json
// @Produce json
// @Param request body httptransport.SubmitVoteRequest true "Ballot"
// @Success 200 {object} httptransport.AckResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/votes [post]
func (h Handler) SubmitVoteHandler(ctx context.Context, req httptransport.SubmitVoteRequest) error {
	return h.Votes.SubmitVote(ctx, commands.SubmitVoteCommand{
		PollID:   req.PollID,
		OptionID: req.OptionID,
	})
}

// PollResultsHandler godoc
// @Summary Fetch poll results
// @Description Forces a tally recompute before responding.
// @Tags votes
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.PollResultsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/polls/{poll_id}/results [get]
func (h Handler) PollResultsHandler(ctx context.Context, pollID string) (httptransport.PollResultsResponse, error) {
	results, err := h.Results.Results(ctx, pollID)
	if err != nil {
		return httptransport.PollResultsResponse{}, err
	}
	rows := make([]httptransport.OptionResultResponse, 0, len(results.Results))
	for _, result := range results.Results {
		rows = append(rows, httptransport.OptionResultResponse{
			Option:     result.Label,
			Votes:      result.Votes,
			Percentage: result.Percentage,
		})
	}
	return httptransport.PollResultsResponse{
		Question:   results.Question,
		Results:    rows,
		TotalVotes: results.TotalVotes,
	}, nil
}

// GenerateReportHandler godoc
// @Summary Generate the final report and purge the meeting
// @Description Returns the PDF artifact; every record the meeting owns is deleted afterwards.
// @Tags reports
// @Produce application/pdf
// @Param meeting_id path string true "Meeting id"
// @Success 200 {file} binary
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/meetings/{meeting_id}/report [get]
func (h Handler) GenerateReportHandler(ctx context.Context, meetingID string) ([]byte, error) {
	return h.Reports.GenerateReport(ctx, meetingID)
}

func mapMeeting(meeting entities.Meeting) httptransport.MeetingResponse {
	return httptransport.MeetingResponse{
		MeetingID:     meeting.MeetingID,
		Title:         meeting.Title,
		OrganizerName: meeting.OrganizerName,
		Code:          meeting.Code,
		Status:        string(meeting.Status),
		CreatedAt:     meeting.CreatedAt,
		CompletedAt:   meeting.CompletedAt,
	}
}

func mapParticipant(participant entities.Participant) httptransport.ParticipantResponse {
	return httptransport.ParticipantResponse{
		ParticipantID: participant.ParticipantID,
		Name:          participant.Name,
		MeetingID:     participant.MeetingID,
		Status:        string(participant.Status),
		JoinedAt:      participant.JoinedAt,
	}
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	options := make([]httptransport.PollOptionResponse, 0, len(poll.Options))
	for _, option := range poll.Options {
		options = append(options, httptransport.PollOptionResponse{
			OptionID: option.OptionID,
			Label:    option.Label,
			Votes:    option.Votes,
		})
	}
	return httptransport.PollResponse{
		PollID:              poll.PollID,
		MeetingID:           poll.MeetingID,
		Question:            poll.Question,
		Options:             options,
		Status:              string(poll.Status),
		TimerDuration:       poll.TimerDuration,
		TimerStartedAt:      poll.TimerStartedAt,
		ShowResultsRealTime: poll.ShowResultsRealTime,
		CreatedAt:           poll.CreatedAt,
	}
}
