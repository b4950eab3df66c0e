package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs local development
// (STORE_DRIVER=memory) and the service/handler tests, mirroring the
// Firestore implementation's merge and created_at semantics.
type MemoryStore struct {
	mu        sync.RWMutex
	flat      map[string]*AnswerSet
	answers   map[string]map[int64]*Answer
	summaries map[string]*UserSummary
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flat:      make(map[string]*AnswerSet),
		answers:   make(map[string]map[int64]*Answer),
		summaries: make(map[string]*UserSummary),
		now:       time.Now,
	}
}

// SetClock overrides the store's clock. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveAnswerSet(ctx context.Context, userID string, answers map[string]string) (*AnswerSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	merged := make(map[string]string, len(answers))
	createdAt := now
	if existing, ok := s.flat[userID]; ok {
		createdAt = existing.CreatedAt
		for k, v := range existing.Answers {
			merged[k] = v
		}
	}
	for k, v := range answers {
		merged[k] = v
	}

	set := &AnswerSet{
		UserID:         userID,
		Answers:        merged,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
		TotalQuestions: len(merged),
	}
	s.flat[userID] = set
	return copyAnswerSet(set), nil
}

func (s *MemoryStore) GetAnswerSet(ctx context.Context, userID string) (*AnswerSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.flat[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAnswerSet(set), nil
}

func (s *MemoryStore) DeleteAnswerSet(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flat[userID]; !ok {
		return ErrNotFound
	}
	delete(s.flat, userID)
	return nil
}

func (s *MemoryStore) UpdateAnswerField(ctx context.Context, userID, questionID, answer string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.flat[userID]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	set.Answers[questionID] = answer
	set.UpdatedAt = s.now().UTC()
	return set.UpdatedAt, nil
}

func (s *MemoryStore) PutAnswer(ctx context.Context, userID string, a *Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putAnswerLocked(userID, a, s.now().UTC())
	return nil
}

func (s *MemoryStore) PutAnswers(ctx context.Context, userID string, answers []*Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, a := range answers {
		s.putAnswerLocked(userID, a, now)
	}
	return nil
}

func (s *MemoryStore) putAnswerLocked(userID string, a *Answer, now time.Time) {
	byQuestion, ok := s.answers[userID]
	if !ok {
		byQuestion = make(map[int64]*Answer)
		s.answers[userID] = byQuestion
	}

	a.CreatedAt = now
	a.UpdatedAt = now
	if existing, ok := byQuestion[a.QuestionID]; ok {
		a.CreatedAt = existing.CreatedAt
	}
	stored := *a
	byQuestion[a.QuestionID] = &stored
}

func (s *MemoryStore) ListAnswers(ctx context.Context, userID string) ([]*Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byQuestion := s.answers[userID]
	answers := make([]*Answer, 0, len(byQuestion))
	for _, a := range byQuestion {
		cp := *a
		answers = append(answers, &cp)
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].QuestionID < answers[j].QuestionID
	})
	return answers, nil
}

func (s *MemoryStore) GetAnswer(ctx context.Context, userID string, questionID int64) (*Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.answers[userID][questionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CountAnswers(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.answers[userID])), nil
}

func (s *MemoryStore) MergeSummary(ctx context.Context, sum *UserSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sum
	s.summaries[sum.UserID] = &cp
	return nil
}

func (s *MemoryStore) GetSummary(ctx context.Context, userID string) (*UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sum
	return &cp, nil
}

func copyAnswerSet(set *AnswerSet) *AnswerSet {
	cp := *set
	cp.Answers = make(map[string]string, len(set.Answers))
	for k, v := range set.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

var _ Store = (*MemoryStore)(nil)
