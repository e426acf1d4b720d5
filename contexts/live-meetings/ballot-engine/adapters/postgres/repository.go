package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the five meeting-owned tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&meetingModel{},
		&participantModel{},
		&pollModel{},
		&pollOptionModel{},
		&voteModel{},
	)
}

func (r *Repository) InsertMeeting(ctx context.Context, meeting entities.Meeting) error {
	row := meetingModelFromEntity(meeting)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrCodeCollision
		}
		return r.logError("ballot_repo_insert_meeting_failed", err, "meeting_id", row.ID)
	}
	return nil
}

func (r *Repository) GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error) {
	var row meetingModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Meeting{}, domainerrors.ErrMeetingNotFound
		}
		return entities.Meeting{}, r.logError("ballot_repo_get_meeting_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActiveMeetingByCode(ctx context.Context, code string) (entities.Meeting, bool, error) {
	var row meetingModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		Where("status = ?", string(entities.MeetingStatusActive)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Meeting{}, false, nil
		}
		return entities.Meeting{}, false, r.logError("ballot_repo_get_meeting_by_code_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListCompletedMeetings(ctx context.Context) ([]entities.Meeting, error) {
	var rows []meetingModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.MeetingStatusCompleted)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_completed_meetings_failed", err)
	}
	meetings := make([]entities.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, row.toEntity())
	}
	return meetings, nil
}

func (r *Repository) MarkMeetingCompleted(ctx context.Context, meetingID string, completedAt time.Time) error {
	at := completedAt.UTC()
	tx := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ?", strings.TrimSpace(meetingID)).
		Updates(map[string]any{
			"status":       string(entities.MeetingStatusCompleted),
			"completed_at": &at,
		})
	if tx.Error != nil {
		return r.logError("ballot_repo_mark_meeting_completed_failed", tx.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrMeetingNotFound
	}
	return nil
}

func (r *Repository) DeleteMeeting(ctx context.Context, meetingID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		Delete(&meetingModel{})
	if tx.Error != nil {
		return 0, r.logError("ballot_repo_delete_meeting_failed", tx.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	return tx.RowsAffected, nil
}

func (r *Repository) InsertParticipant(ctx context.Context, participant entities.Participant) error {
	row := participantModelFromEntity(participant)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrNameTaken
		}
		return r.logError("ballot_repo_insert_participant_failed", err,
			"participant_id", row.ID,
			"meeting_id", row.MeetingID,
		)
	}
	return nil
}

func (r *Repository) GetParticipant(ctx context.Context, participantID string) (entities.Participant, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(participantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, domainerrors.ErrParticipantNotFound
		}
		return entities.Participant{}, r.logError("ballot_repo_get_participant_failed", err, "participant_id", strings.TrimSpace(participantID))
	}
	return row.toEntity(), nil
}

func (r *Repository) FindParticipantByName(ctx context.Context, meetingID string, name string) (entities.Participant, bool, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Where("name = ?", strings.TrimSpace(name)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, false, nil
		}
		return entities.Participant{}, false, r.logError("ballot_repo_find_participant_by_name_failed", err,
			"meeting_id", strings.TrimSpace(meetingID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListParticipantsByMeeting(ctx context.Context, meetingID string) ([]entities.Participant, error) {
	var rows []participantModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_participants_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	participants := make([]entities.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, row.toEntity())
	}
	return participants, nil
}

func (r *Repository) UpdateParticipantStatus(ctx context.Context, participantID string, status entities.ParticipantStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&participantModel{}).
		Where("id = ?", strings.TrimSpace(participantID)).
		Update("approval_status", string(status))
	if tx.Error != nil {
		return r.logError("ballot_repo_update_participant_status_failed", tx.Error, "participant_id", strings.TrimSpace(participantID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrParticipantNotFound
	}
	return nil
}

func (r *Repository) DeleteParticipantsByMeeting(ctx context.Context, meetingID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Delete(&participantModel{})
	if tx.Error != nil {
		return 0, r.logError("ballot_repo_delete_participants_failed", tx.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	return tx.RowsAffected, nil
}

func (r *Repository) InsertPoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	optionRows := optionModelsFromEntity(poll)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(optionRows) > 0 {
			if err := tx.Create(&optionRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("ballot_repo_insert_poll_failed", err, "poll_id", row.ID, "meeting_id", row.MeetingID)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("ballot_repo_get_poll_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	var optionRows []pollOptionModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", row.ID).
		Order("position ASC").
		Find(&optionRows).Error; err != nil {
		return entities.Poll{}, r.logError("ballot_repo_get_poll_options_failed", err, "poll_id", row.ID)
	}
	return row.toEntity(optionRows), nil
}

func (r *Repository) ListPollsByMeeting(ctx context.Context, meetingID string) ([]entities.Poll, error) {
	var rows []pollModel
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_polls_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	if len(rows) == 0 {
		return []entities.Poll{}, nil
	}

	pollIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		pollIDs = append(pollIDs, row.ID)
	}
	var optionRows []pollOptionModel
	if err := r.db.WithContext(ctx).
		Where("poll_id IN ?", pollIDs).
		Order("position ASC").
		Find(&optionRows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_poll_options_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	grouped := make(map[string][]pollOptionModel, len(rows))
	for _, option := range optionRows {
		grouped[option.PollID] = append(grouped[option.PollID], option)
	}

	polls := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		polls = append(polls, row.toEntity(grouped[row.ID]))
	}
	return polls, nil
}

func (r *Repository) UpdatePollStatus(ctx context.Context, pollID string, status entities.PollStatus, timerStartedAt *time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", strings.TrimSpace(pollID)).
		Updates(map[string]any{
			"status":           string(status),
			"timer_started_at": timerStartedAt,
		})
	if tx.Error != nil {
		return r.logError("ballot_repo_update_poll_status_failed", tx.Error, "poll_id", strings.TrimSpace(pollID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrPollNotFound
	}
	return nil
}

// UpdatePollOptionCounts zero-fills every option first, then applies the
// tally map, so options without votes end at an explicit 0.
func (r *Repository) UpdatePollOptionCounts(ctx context.Context, pollID string, counts map[string]int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&pollOptionModel{}).
			Where("poll_id = ?", strings.TrimSpace(pollID)).
			Update("votes", 0).Error; err != nil {
			return err
		}
		for optionID, votes := range counts {
			if votes == 0 {
				continue
			}
			if err := tx.Model(&pollOptionModel{}).
				Where("id = ?", optionID).
				Update("votes", votes).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("ballot_repo_update_option_counts_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	return nil
}

func (r *Repository) DeletePollsByMeeting(ctx context.Context, meetingID string) (int64, error) {
	meeting := strings.TrimSpace(meetingID)
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id IN (?)",
			tx.Model(&pollModel{}).Select("id").Where("meeting_id = ?", meeting),
		).Delete(&pollOptionModel{}).Error; err != nil {
			return err
		}
		polls := tx.Where("meeting_id = ?", meeting).Delete(&pollModel{})
		if polls.Error != nil {
			return polls.Error
		}
		removed = polls.RowsAffected
		return nil
	})
	if err != nil {
		return 0, r.logError("ballot_repo_delete_polls_failed", err, "meeting_id", meeting)
	}
	return removed, nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("ballot_repo_insert_vote_failed", err, "poll_id", row.PollID)
	}
	return nil
}

func (r *Repository) ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("voted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_votes_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toEntity())
	}
	return votes, nil
}

func (r *Repository) DeleteVotesByPolls(ctx context.Context, pollIDs []string) (int64, error) {
	if len(pollIDs) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).
		Where("poll_id IN ?", pollIDs).
		Delete(&voteModel{})
	if tx.Error != nil {
		return 0, r.logError("ballot_repo_delete_votes_failed", tx.Error)
	}
	return tx.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "live-meetings/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

// SystemClock satisfies ports.Clock with wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator satisfies ports.IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// CodeGenerator issues 8-character upper-hex join codes.
type CodeGenerator struct{}

func (CodeGenerator) NewCode(_ context.Context) (string, error) {
	return strings.ToUpper(uuid.NewString()[:8]), nil
}
