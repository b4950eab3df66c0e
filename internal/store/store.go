// Package store is the data-access layer for user answers. It implements the
// two historical schema shapes side by side: the flat map-of-answers document
// and the per-question sub-collection with a per-user summary rollup.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document that must exist is absent.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract. FirestoreStore is the production
// implementation; MemoryStore backs development and tests.
type Store interface {
	// Flat (legacy) schema.

	// SaveAnswerSet creates or merges the user's answer document. On merge
	// the original created_at is preserved, incoming keys overwrite matching
	// ones, keys absent from the write are retained, and total_questions
	// reflects the merged map. Returns the document as stored.
	SaveAnswerSet(ctx context.Context, userID string, answers map[string]string) (*AnswerSet, error)

	// GetAnswerSet returns ErrNotFound when the user has no document.
	GetAnswerSet(ctx context.Context, userID string) (*AnswerSet, error)

	// DeleteAnswerSet returns ErrNotFound when the user has no document.
	DeleteAnswerSet(ctx context.Context, userID string) error

	// UpdateAnswerField updates a single answers.<questionID> field plus
	// updated_at, returning the updated_at it wrote. The parent document must
	// exist: ErrNotFound otherwise. total_questions is left as it was; only a
	// full SaveAnswerSet recounts it.
	UpdateAnswerField(ctx context.Context, userID, questionID, answer string) (time.Time, error)

	// Sub-collection schema.

	// PutAnswer writes one answer document, preserving the original
	// created_at when the (user, question) pair already exists.
	PutAnswer(ctx context.Context, userID string, a *Answer) error

	// PutAnswers writes the batch as a single atomic submission.
	PutAnswers(ctx context.Context, userID string, answers []*Answer) error

	// ListAnswers returns the user's answers ordered ascending by question id.
	ListAnswers(ctx context.Context, userID string) ([]*Answer, error)

	// GetAnswer returns ErrNotFound when the pair is absent.
	GetAnswer(ctx context.Context, userID string, questionID int64) (*Answer, error)

	// CountAnswers returns the live number of answer documents for the user.
	CountAnswers(ctx context.Context, userID string) (int64, error)

	// MergeSummary merge-writes the rollup, leaving unrelated fields intact.
	MergeSummary(ctx context.Context, s *UserSummary) error

	// GetSummary returns ErrNotFound when no rollup has been written yet.
	GetSummary(ctx context.Context, userID string) (*UserSummary, error)

	Close() error
}
