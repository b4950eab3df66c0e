package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	flatCollection   = "ai_answers"   // one AnswerSet document per user
	userCollection   = "user_answers" // one UserSummary document per user
	answerCollection = "answers"      // sub-collection of Answer documents
)

// FirestoreStore implements Store against Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewFirestoreStore connects to Firestore for the given project. opts must
// carry the credential option produced by the loader.
func NewFirestoreStore(ctx context.Context, projectID string, logger *zap.Logger, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, logger: logger, now: time.Now}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) flatDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(flatCollection).Doc(userID)
}

func (s *FirestoreStore) summaryDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(userCollection).Doc(userID)
}

func (s *FirestoreStore) answerCol(userID string) *firestore.CollectionRef {
	return s.summaryDoc(userID).Collection(answerCollection)
}

func (s *FirestoreStore) answerDoc(userID string, questionID int64) *firestore.DocumentRef {
	return s.answerCol(userID).Doc(strconv.FormatInt(questionID, 10))
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// SaveAnswerSet merges the incoming answers over any existing document. The
// merged map is computed here so total_questions always matches what is
// stored, and created_at survives from the first write.
func (s *FirestoreStore) SaveAnswerSet(ctx context.Context, userID string, answers map[string]string) (*AnswerSet, error) {
	now := s.now().UTC()
	set := &AnswerSet{
		UserID:    userID,
		Answers:   answers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	snap, err := s.flatDoc(userID).Get(ctx)
	switch {
	case err == nil:
		var existing AnswerSet
		if err := snap.DataTo(&existing); err != nil {
			return nil, fmt.Errorf("failed to decode answer set for user %s: %w", userID, err)
		}
		merged := make(map[string]string, len(existing.Answers)+len(answers))
		for k, v := range existing.Answers {
			merged[k] = v
		}
		for k, v := range answers {
			merged[k] = v
		}
		set.Answers = merged
		if !existing.CreatedAt.IsZero() {
			set.CreatedAt = existing.CreatedAt
		}
	case isNotFound(err):
		// first write for this user
	default:
		return nil, fmt.Errorf("failed to read answer set for user %s: %w", userID, err)
	}
	set.TotalQuestions = len(set.Answers)

	data := map[string]interface{}{
		"user_id":         set.UserID,
		"answers":         set.Answers,
		"created_at":      set.CreatedAt,
		"updated_at":      set.UpdatedAt,
		"total_questions": set.TotalQuestions,
	}
	if _, err := s.flatDoc(userID).Set(ctx, data, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to save answer set for user %s: %w", userID, err)
	}
	return set, nil
}

func (s *FirestoreStore) GetAnswerSet(ctx context.Context, userID string) (*AnswerSet, error) {
	snap, err := s.flatDoc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get answer set for user %s: %w", userID, err)
	}
	var set AnswerSet
	if err := snap.DataTo(&set); err != nil {
		return nil, fmt.Errorf("failed to decode answer set for user %s: %w", userID, err)
	}
	return &set, nil
}

func (s *FirestoreStore) DeleteAnswerSet(ctx context.Context, userID string) error {
	if _, err := s.flatDoc(userID).Get(ctx); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check answer set for user %s: %w", userID, err)
	}
	if _, err := s.flatDoc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete answer set for user %s: %w", userID, err)
	}
	return nil
}

// UpdateAnswerField performs a field-level update of answers.<questionID>.
// Firestore rejects updates against a missing document, which is exactly the
// required-existence contract: callers get ErrNotFound, never an upsert.
func (s *FirestoreStore) UpdateAnswerField(ctx context.Context, userID, questionID, answer string) (time.Time, error) {
	now := s.now().UTC()
	_, err := s.flatDoc(userID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"answers", questionID}, Value: answer},
		{Path: "updated_at", Value: now},
	})
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to update answer %s for user %s: %w", questionID, userID, err)
	}
	return now, nil
}

func (s *FirestoreStore) PutAnswer(ctx context.Context, userID string, a *Answer) error {
	now := s.now().UTC()
	createdAt := now

	snap, err := s.answerDoc(userID, a.QuestionID).Get(ctx)
	switch {
	case err == nil:
		var existing Answer
		if err := snap.DataTo(&existing); err == nil && !existing.CreatedAt.IsZero() {
			createdAt = existing.CreatedAt
		}
	case isNotFound(err):
	default:
		return fmt.Errorf("failed to read answer %d for user %s: %w", a.QuestionID, userID, err)
	}

	data := answerData(a, createdAt, now)
	if _, err := s.answerDoc(userID, a.QuestionID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save answer %d for user %s: %w", a.QuestionID, userID, err)
	}
	a.CreatedAt = createdAt
	a.UpdatedAt = now
	return nil
}

// PutAnswers writes the whole batch inside one transaction so the submission
// is all-or-nothing. Reads for created_at preservation happen inside the
// transaction, before any write, as Firestore requires.
func (s *FirestoreStore) PutAnswers(ctx context.Context, userID string, answers []*Answer) error {
	if len(answers) == 0 {
		return nil
	}
	now := s.now().UTC()
	created := make(map[int64]time.Time, len(answers))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, a := range answers {
			snap, err := tx.Get(s.answerDoc(userID, a.QuestionID))
			switch {
			case err == nil:
				var existing Answer
				if err := snap.DataTo(&existing); err == nil && !existing.CreatedAt.IsZero() {
					created[a.QuestionID] = existing.CreatedAt
					continue
				}
				created[a.QuestionID] = now
			case isNotFound(err):
				created[a.QuestionID] = now
			default:
				return err
			}
		}
		for _, a := range answers {
			if err := tx.Set(s.answerDoc(userID, a.QuestionID), answerData(a, created[a.QuestionID], now), firestore.MergeAll); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %d answers for user %s: %w", len(answers), userID, err)
	}
	for _, a := range answers {
		a.UpdatedAt = now
		a.CreatedAt = created[a.QuestionID]
	}
	return nil
}

func (s *FirestoreStore) ListAnswers(ctx context.Context, userID string) ([]*Answer, error) {
	iter := s.answerCol(userID).OrderBy("question_id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var answers []*Answer
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list answers for user %s: %w", userID, err)
		}
		var a Answer
		if err := snap.DataTo(&a); err != nil {
			s.logger.Warn("skipping undecodable answer document",
				zap.String("user_id", userID), zap.String("doc_id", snap.Ref.ID), zap.Error(err))
			continue
		}
		answers = append(answers, &a)
	}
	return answers, nil
}

func (s *FirestoreStore) GetAnswer(ctx context.Context, userID string, questionID int64) (*Answer, error) {
	snap, err := s.answerDoc(userID, questionID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get answer %d for user %s: %w", questionID, userID, err)
	}
	var a Answer
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("failed to decode answer %d for user %s: %w", questionID, userID, err)
	}
	return &a, nil
}

// CountAnswers counts live sub-documents. Select() fetches no field values,
// so the count doesn't pay for document contents.
func (s *FirestoreStore) CountAnswers(ctx context.Context, userID string) (int64, error) {
	iter := s.answerCol(userID).Select().Documents(ctx)
	defer iter.Stop()

	var n int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count answers for user %s: %w", userID, err)
		}
		n++
	}
	return n, nil
}

func (s *FirestoreStore) MergeSummary(ctx context.Context, sum *UserSummary) error {
	data := map[string]interface{}{
		"user_id":       sum.UserID,
		"total_answers": sum.TotalAnswers,
		"last_updated":  sum.LastUpdated,
	}
	if _, err := s.summaryDoc(sum.UserID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to write summary for user %s: %w", sum.UserID, err)
	}
	return nil
}

func (s *FirestoreStore) GetSummary(ctx context.Context, userID string) (*UserSummary, error) {
	snap, err := s.summaryDoc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get summary for user %s: %w", userID, err)
	}
	var sum UserSummary
	if err := snap.DataTo(&sum); err != nil {
		return nil, fmt.Errorf("failed to decode summary for user %s: %w", userID, err)
	}
	return &sum, nil
}

func answerData(a *Answer, createdAt, updatedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"question_id":   a.QuestionID,
		"question_text": a.QuestionText,
		"answer":        a.Answer,
		"created_at":    createdAt,
		"updated_at":    updatedAt,
	}
}

var _ Store = (*FirestoreStore)(nil)
