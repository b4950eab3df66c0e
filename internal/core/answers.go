// Package core implements the answer workflows on top of the store:
// validation, key conversion between the wire and document shapes, stats, and
// the per-user summary rollup.
package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/store"
)

// ErrInvalidInput marks validation failures. Handlers map it to 400; every
// wrapped message is safe to show to the caller.
var ErrInvalidInput = errors.New("invalid input")

// AnswerService owns all reads and writes of user answers.
type AnswerService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewAnswerService(st store.Store, logger *zap.Logger) *AnswerService {
	return &AnswerService{store: st, logger: logger, now: time.Now}
}

// AnswerItem is one entry of a bulk save. Pointer fields distinguish a
// missing field (whole-request validation failure) from a present-but-blank
// answer (that one item is skipped).
type AnswerItem struct {
	QuestionID   *int64  `json:"question_id"`
	QuestionText *string `json:"question_text"`
	Answer       *string `json:"answer"`
}

// AnswerStats is the flat-mode completion report.
type AnswerStats struct {
	TotalQuestions       int        `json:"total_questions"`
	CompletedQuestions   int        `json:"completed_questions"`
	CompletionPercentage float64    `json:"completion_percentage"`
	LastUpdated          *time.Time `json:"last_updated"`
	CreatedAt            *time.Time `json:"created_at"`
}

// SaveAnswers stores the whole answer map for a user (flat schema), merging
// over any previous save. Question ids are stringified for the document
// store, which only supports string keys.
func (s *AnswerService) SaveAnswers(ctx context.Context, userID string, answers map[int64]string) (*store.AnswerSet, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers cannot be empty", ErrInvalidInput)
	}

	byKey := make(map[string]string, len(answers))
	for id, answer := range answers {
		byKey[strconv.FormatInt(id, 10)] = answer
	}

	set, err := s.store.SaveAnswerSet(ctx, userID, byKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved answers", zap.String("user_id", userID), zap.Int("total_questions", set.TotalQuestions))
	return set, nil
}

// GetAnswers returns the user's answer map with integer keys restored. A key
// that doesn't parse as an integer is dropped with a warning, never surfaced
// as an error: the rest of the document is still good data.
func (s *AnswerService) GetAnswers(ctx context.Context, userID string) (map[int64]string, *store.AnswerSet, error) {
	set, err := s.store.GetAnswerSet(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return map[int64]string{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	answers := make(map[int64]string, len(set.Answers))
	for key, answer := range set.Answers {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("dropping answer with invalid question id key",
				zap.String("user_id", userID), zap.String("key", key))
			continue
		}
		answers[id] = answer
	}
	return answers, set, nil
}

// DeleteAnswers removes the user's flat answer document.
func (s *AnswerService) DeleteAnswers(ctx context.Context, userID string) error {
	if err := s.store.DeleteAnswerSet(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("deleted answers", zap.String("user_id", userID))
	return nil
}

// UpdateAnswer updates a single answer inside the flat document and returns
// the stored updated_at. The parent document must already exist;
// store.ErrNotFound propagates otherwise.
func (s *AnswerService) UpdateAnswer(ctx context.Context, userID string, questionID int64, answer string) (time.Time, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: answer cannot be empty", ErrInvalidInput)
	}
	return s.store.UpdateAnswerField(ctx, userID, strconv.FormatInt(questionID, 10), trimmed)
}

// Stats reports completion over the flat answer map. A user with no document
// gets zero-valued stats, not an error.
func (s *AnswerService) Stats(ctx context.Context, userID string) (*AnswerStats, error) {
	set, err := s.store.GetAnswerSet(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &AnswerStats{}, nil
	}
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, answer := range set.Answers {
		if strings.TrimSpace(answer) != "" {
			completed++
		}
	}
	stats := &AnswerStats{
		TotalQuestions:     len(set.Answers),
		CompletedQuestions: completed,
		LastUpdated:        &set.UpdatedAt,
		CreatedAt:          &set.CreatedAt,
	}
	if stats.TotalQuestions > 0 {
		pct := float64(completed) / float64(stats.TotalQuestions) * 100
		stats.CompletionPercentage = math.Round(pct*100) / 100
	}
	return stats, nil
}

// SaveAnswer stores one answer in the sub-collection schema and refreshes the
// user's summary.
func (s *AnswerService) SaveAnswer(ctx context.Context, userID string, questionID int64, questionText, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: answer cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(questionText) == "" {
		return fmt.Errorf("%w: question text cannot be empty", ErrInvalidInput)
	}

	a := &store.Answer{
		QuestionID:   questionID,
		QuestionText: questionText,
		Answer:       strings.TrimSpace(answer),
	}
	if err := s.store.PutAnswer(ctx, userID, a); err != nil {
		return err
	}
	s.logger.Info("saved answer", zap.String("user_id", userID), zap.Int64("question_id", questionID))
	s.refreshSummary(ctx, userID)
	return nil
}

// SaveAnswersBulk validates every item for shape before any store mutation:
// a missing question_id, question_text, or answer field fails the whole
// request. An item whose answer is present but blank is skipped — the skip
// is deliberate policy, not partial failure. Surviving items are written as
// one atomic submission, then the summary refreshes once. Returns the number
// of answers stored.
func (s *AnswerService) SaveAnswersBulk(ctx context.Context, userID string, items []AnswerItem) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: answers list cannot be empty", ErrInvalidInput)
	}

	answers := make([]*store.Answer, 0, len(items))
	for i, item := range items {
		if item.QuestionID == nil {
			return 0, fmt.Errorf("%w: item %d is missing question_id", ErrInvalidInput, i)
		}
		if item.QuestionText == nil {
			return 0, fmt.Errorf("%w: item %d is missing question_text", ErrInvalidInput, i)
		}
		if item.Answer == nil {
			return 0, fmt.Errorf("%w: item %d is missing answer", ErrInvalidInput, i)
		}
		if strings.TrimSpace(*item.QuestionText) == "" {
			return 0, fmt.Errorf("%w: item %d has an empty question_text", ErrInvalidInput, i)
		}
		if strings.TrimSpace(*item.Answer) == "" {
			s.logger.Debug("skipping bulk item with blank answer",
				zap.String("user_id", userID), zap.Int64("question_id", *item.QuestionID))
			continue
		}
		answers = append(answers, &store.Answer{
			QuestionID:   *item.QuestionID,
			QuestionText: *item.QuestionText,
			Answer:       strings.TrimSpace(*item.Answer),
		})
	}

	if len(answers) > 0 {
		if err := s.store.PutAnswers(ctx, userID, answers); err != nil {
			return 0, err
		}
	}
	s.logger.Info("saved bulk answers", zap.String("user_id", userID),
		zap.Int("stored", len(answers)), zap.Int("received", len(items)))
	s.refreshSummary(ctx, userID)
	return len(answers), nil
}

// ListAnswers returns the user's answers ordered ascending by question id.
func (s *AnswerService) ListAnswers(ctx context.Context, userID string) ([]*store.Answer, error) {
	return s.store.ListAnswers(ctx, userID)
}

// GetAnswer returns one answer or store.ErrNotFound.
func (s *AnswerService) GetAnswer(ctx context.Context, userID string, questionID int64) (*store.Answer, error) {
	return s.store.GetAnswer(ctx, userID, questionID)
}

// Summary returns the user's rollup document, if one has been written.
func (s *AnswerService) Summary(ctx context.Context, userID string) (*store.UserSummary, error) {
	return s.store.GetSummary(ctx, userID)
}

// refreshSummary recomputes total_answers from the live sub-document count
// and merge-writes the rollup. Failures are logged and swallowed: the answer
// that triggered the refresh is already durably saved, and the count
// self-heals on the next write.
func (s *AnswerService) refreshSummary(ctx context.Context, userID string) {
	count, err := s.store.CountAnswers(ctx, userID)
	if err != nil {
		s.logger.Warn("summary refresh: count failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	sum := &store.UserSummary{
		UserID:       userID,
		TotalAnswers: count,
		LastUpdated:  s.now().UTC(),
	}
	if err := s.store.MergeSummary(ctx, sum); err != nil {
		s.logger.Warn("summary refresh: write failed", zap.String("user_id", userID), zap.Error(err))
	}
}
