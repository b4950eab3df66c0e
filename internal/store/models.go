package store

import "time"

// AnswerSet is the legacy flat-schema document: one document per user holding
// every answer in a single map. Map keys are stringified question ids because
// the document store only supports string keys.
type AnswerSet struct {
	UserID         string            `json:"user_id" firestore:"user_id"`
	Answers        map[string]string `json:"answers" firestore:"answers"`
	CreatedAt      time.Time         `json:"created_at" firestore:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" firestore:"updated_at"`
	TotalQuestions int               `json:"total_questions" firestore:"total_questions"`
}

// Answer is the sub-collection-schema document: one document per
// (user, question) pair. CreatedAt is immutable across overwrites.
type Answer struct {
	QuestionID   int64     `json:"question_id" firestore:"question_id"`
	QuestionText string    `json:"question_text" firestore:"question_text"`
	Answer       string    `json:"answer" firestore:"answer"`
	CreatedAt    time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updated_at"`
}

// UserSummary is the per-user rollup. TotalAnswers is recomputed from the
// live sub-document count on every write, never incremented, so it self-heals
// but is only eventually consistent between writes.
type UserSummary struct {
	UserID       string    `json:"user_id" firestore:"user_id"`
	TotalAnswers int64     `json:"total_answers" firestore:"total_answers"`
	LastUpdated  time.Time `json:"last_updated" firestore:"last_updated"`
}
