package errors

import "errors"

var (
	ErrInvalidMeetingInput     = errors.New("invalid meeting input")
	ErrInvalidParticipantInput = errors.New("invalid participant input")
	ErrInvalidPollInput        = errors.New("invalid poll input")
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrPollNotFound            = errors.New("poll not found")
	ErrNameTaken               = errors.New("participant name already taken in meeting")
	ErrCodeCollision           = errors.New("meeting code already held by an active meeting")
	ErrPollNotActive           = errors.New("poll is not active")
	ErrUnknownOption           = errors.New("option does not belong to poll")
	ErrReportRenderFailed      = errors.New("report rendering failed")
	ErrPurgeIncomplete         = errors.New("meeting purge incomplete")
)
