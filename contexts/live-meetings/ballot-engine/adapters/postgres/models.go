package postgresadapter

import (
	"strings"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
)

type meetingModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	Title         string `gorm:"column:title"`
	OrganizerName string `gorm:"column:organizer_name"`
	// The partial unique index closes the check-then-insert race on code
	// allocation: two concurrent creates drawing the same code cannot both
	// land while active. Completed rows are excluded so a purged meeting
	// frees its code for reuse.
	Code        string     `gorm:"column:code;index:idx_meetings_active_code,unique,where:status = 'active'"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (meetingModel) TableName() string {
	return "meetings"
}

func meetingModelFromEntity(meeting entities.Meeting) meetingModel {
	row := meetingModel{
		ID:            strings.TrimSpace(meeting.MeetingID),
		Title:         strings.TrimSpace(meeting.Title),
		OrganizerName: strings.TrimSpace(meeting.OrganizerName),
		Code:          strings.TrimSpace(meeting.Code),
		Status:        string(meeting.Status),
		CreatedAt:     meeting.CreatedAt.UTC(),
	}
	if meeting.CompletedAt != nil {
		at := meeting.CompletedAt.UTC()
		row.CompletedAt = &at
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m meetingModel) toEntity() entities.Meeting {
	meeting := entities.Meeting{
		MeetingID:     m.ID,
		Title:         m.Title,
		OrganizerName: m.OrganizerName,
		Code:          m.Code,
		Status:        entities.MeetingStatus(m.Status),
		CreatedAt:     m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		at := m.CompletedAt.UTC()
		meeting.CompletedAt = &at
	}
	return meeting
}

// The unique index spans meeting and name so a rejected participant's name
// still blocks reuse at the storage layer too.
type participantModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex:idx_participants_meeting_name"`
	MeetingID string    `gorm:"column:meeting_id;uniqueIndex:idx_participants_meeting_name;index"`
	Status    string    `gorm:"column:approval_status"`
	JoinedAt  time.Time `gorm:"column:joined_at"`
}

func (participantModel) TableName() string {
	return "participants"
}

func participantModelFromEntity(participant entities.Participant) participantModel {
	row := participantModel{
		ID:        strings.TrimSpace(participant.ParticipantID),
		Name:      strings.TrimSpace(participant.Name),
		MeetingID: strings.TrimSpace(participant.MeetingID),
		Status:    string(participant.Status),
		JoinedAt:  participant.JoinedAt.UTC(),
	}
	if row.JoinedAt.IsZero() {
		row.JoinedAt = time.Now().UTC()
	}
	return row
}

func (m participantModel) toEntity() entities.Participant {
	return entities.Participant{
		ParticipantID: m.ID,
		Name:          m.Name,
		MeetingID:     m.MeetingID,
		Status:        entities.ParticipantStatus(m.Status),
		JoinedAt:      m.JoinedAt.UTC(),
	}
}

type pollModel struct {
	ID                  string     `gorm:"column:id;primaryKey"`
	MeetingID           string     `gorm:"column:meeting_id;index"`
	Question            string     `gorm:"column:question"`
	Status              string     `gorm:"column:status"`
	TimerDuration       *int       `gorm:"column:timer_duration"`
	TimerStartedAt      *time.Time `gorm:"column:timer_started_at"`
	ShowResultsRealTime bool       `gorm:"column:show_results_real_time"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) pollModel {
	row := pollModel{
		ID:                  strings.TrimSpace(poll.PollID),
		MeetingID:           strings.TrimSpace(poll.MeetingID),
		Question:            strings.TrimSpace(poll.Question),
		Status:              string(poll.Status),
		TimerDuration:       poll.TimerDuration,
		TimerStartedAt:      poll.TimerStartedAt,
		ShowResultsRealTime: poll.ShowResultsRealTime,
		CreatedAt:           poll.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m pollModel) toEntity(optionRows []pollOptionModel) entities.Poll {
	options := make([]entities.PollOption, 0, len(optionRows))
	for _, option := range optionRows {
		options = append(options, entities.PollOption{
			OptionID: option.ID,
			Label:    option.Label,
			Votes:    option.Votes,
		})
	}
	return entities.Poll{
		PollID:              m.ID,
		MeetingID:           m.MeetingID,
		Question:            m.Question,
		Options:             options,
		Status:              entities.PollStatus(m.Status),
		TimerDuration:       m.TimerDuration,
		TimerStartedAt:      m.TimerStartedAt,
		ShowResultsRealTime: m.ShowResultsRealTime,
		CreatedAt:           m.CreatedAt.UTC(),
	}
}

// position preserves the organizer's option order across reads.
type pollOptionModel struct {
	ID       string `gorm:"column:id;primaryKey"`
	PollID   string `gorm:"column:poll_id;index"`
	Label    string `gorm:"column:label"`
	Votes    int    `gorm:"column:votes"`
	Position int    `gorm:"column:position"`
}

func (pollOptionModel) TableName() string {
	return "poll_options"
}

func optionModelsFromEntity(poll entities.Poll) []pollOptionModel {
	rows := make([]pollOptionModel, 0, len(poll.Options))
	for i, option := range poll.Options {
		rows = append(rows, pollOptionModel{
			ID:       strings.TrimSpace(option.OptionID),
			PollID:   strings.TrimSpace(poll.PollID),
			Label:    option.Label,
			Votes:    option.Votes,
			Position: i,
		})
	}
	return rows
}

// voteModel has no participant column by design; anonymity lives in the
// schema, not just the application layer.
type voteModel struct {
	ID       string    `gorm:"column:id;primaryKey"`
	PollID   string    `gorm:"column:poll_id;index"`
	OptionID string    `gorm:"column:option_id"`
	VotedAt  time.Time `gorm:"column:voted_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:       strings.TrimSpace(vote.VoteID),
		PollID:   strings.TrimSpace(vote.PollID),
		OptionID: strings.TrimSpace(vote.OptionID),
		VotedAt:  vote.VotedAt.UTC(),
	}
	if row.VotedAt.IsZero() {
		row.VotedAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:   m.ID,
		PollID:   m.PollID,
		OptionID: m.OptionID,
		VotedAt:  m.VotedAt.UTC(),
	}
}
