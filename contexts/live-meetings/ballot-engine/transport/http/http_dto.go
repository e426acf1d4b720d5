package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateMeetingRequest struct {
	Title         string `json:"title"`
	OrganizerName string `json:"organizer_name"`
}

type MeetingResponse struct {
	MeetingID     string     `json:"id"`
	Title         string     `json:"title"`
	OrganizerName string     `json:"organizer_name"`
	Code          string     `json:"meeting_code"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type ParticipantResponse struct {
	ParticipantID string    `json:"id"`
	Name          string    `json:"name"`
	MeetingID     string    `json:"meeting_id"`
	Status        string    `json:"approval_status"`
	JoinedAt      time.Time `json:"joined_at"`
}

type JoinMeetingRequest struct {
	Name string `json:"name"`
	Code string `json:"meeting_code"`
}

type DecideParticipantRequest struct {
	Approved bool `json:"approved"`
}

type ParticipantStatusResponse struct {
	Status string `json:"status"`
}

type PollOptionResponse struct {
	OptionID string `json:"id"`
	Label    string `json:"text"`
	Votes    int    `json:"votes"`
}

type CreatePollRequest struct {
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	TimerDuration       *int     `json:"timer_duration,omitempty"`
	ShowResultsRealTime bool     `json:"show_results_real_time"`
}

type PollResponse struct {
	PollID              string               `json:"id"`
	MeetingID           string               `json:"meeting_id"`
	Question            string               `json:"question"`
	Options             []PollOptionResponse `json:"options"`
	Status              string               `json:"status"`
	TimerDuration       *int                 `json:"timer_duration,omitempty"`
	TimerStartedAt      *time.Time           `json:"timer_started_at,omitempty"`
	ShowResultsRealTime bool                 `json:"show_results_real_time"`
	CreatedAt           time.Time            `json:"created_at"`
}

type OrganizerViewResponse struct {
	Meeting      MeetingResponse       `json:"meeting"`
	Participants []ParticipantResponse `json:"participants"`
	Polls        []PollResponse        `json:"polls"`
}

type SubmitVoteRequest struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
}

type OptionResultResponse struct {
	Option     string  `json:"option"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResultsResponse struct {
	Question   string                 `json:"question"`
	Results    []OptionResultResponse `json:"results"`
	TotalVotes int                    `json:"total_votes"`
}

type AckResponse struct {
	Status string `json:"status"`
}
