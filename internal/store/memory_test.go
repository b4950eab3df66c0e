package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	now := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return now, advance
}

func TestMemoryStore_SaveGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := map[string]string{"1": "honesty", "2": "travel"}
	saved, err := s.SaveAnswerSet(ctx, "user-a", in)
	if err != nil {
		t.Fatalf("SaveAnswerSet failed: %v", err)
	}
	if saved.TotalQuestions != 2 {
		t.Errorf("total_questions = %d, want 2", saved.TotalQuestions)
	}

	got, err := s.GetAnswerSet(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetAnswerSet failed: %v", err)
	}
	if len(got.Answers) != 2 || got.Answers["1"] != "honesty" || got.Answers["2"] != "travel" {
		t.Errorf("answers = %v, want %v", got.Answers, in)
	}
	if got.UserID != "user-a" {
		t.Errorf("user_id = %q, want user-a", got.UserID)
	}
}

func TestMemoryStore_SavePreservesCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	now, advance := testClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.SetClock(now)
	ctx := context.Background()

	first, err := s.SaveAnswerSet(ctx, "user-a", map[string]string{"1": "a"})
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	advance(time.Hour)
	second, err := s.SaveAnswerSet(ctx, "user-a", map[string]string{"2": "b"})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	// merge keeps the first write's keys
	if second.TotalQuestions != 2 || second.Answers["1"] != "a" || second.Answers["2"] != "b" {
		t.Errorf("merged answers = %v, total %d", second.Answers, second.TotalQuestions)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetAnswerSet(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.DeleteAnswerSet(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete of missing set: err = %v, want ErrNotFound", err)
	}

	if _, err := s.SaveAnswerSet(ctx, "user-a", map[string]string{"1": "a"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.DeleteAnswerSet(ctx, "user-a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetAnswerSet(ctx, "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_UpdateAnswerFieldRequiresParent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.UpdateAnswerField(ctx, "ghost", "1", "new answer")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := s.SaveAnswerSet(ctx, "user-a", map[string]string{"1": "old"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	updatedAt, err := s.UpdateAnswerField(ctx, "user-a", "1", "new answer")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := s.GetAnswerSet(ctx, "user-a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Answers["1"] != "new answer" {
		t.Errorf("answer = %q, want %q", got.Answers["1"], "new answer")
	}
	if !got.UpdatedAt.Equal(updatedAt) {
		t.Errorf("stored updated_at = %v, returned %v", got.UpdatedAt, updatedAt)
	}
}

// A field-level update writes answers.<id> and updated_at only, so a key it
// introduces must not change total_questions. Matches the Firestore store,
// where only a full SaveAnswerSet recounts.
func TestMemoryStore_UpdateAnswerFieldLeavesTotalQuestions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.SaveAnswerSet(ctx, "user-a", map[string]string{"1": "a"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := s.UpdateAnswerField(ctx, "user-a", "2", "b"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := s.GetAnswerSet(ctx, "user-a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Answers) != 2 {
		t.Fatalf("answers = %v, want 2 keys", got.Answers)
	}
	if got.TotalQuestions != 1 {
		t.Errorf("total_questions = %d, want 1 (unchanged by field update)", got.TotalQuestions)
	}
}

func TestMemoryStore_PutAnswerPreservesCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	now, advance := testClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.SetClock(now)
	ctx := context.Background()

	first := &Answer{QuestionID: 1, QuestionText: "Q1", Answer: "A1"}
	if err := s.PutAnswer(ctx, "user-a", first); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	advance(time.Hour)
	second := &Answer{QuestionID: 1, QuestionText: "Q1", Answer: "A1 revised"}
	if err := s.PutAnswer(ctx, "user-a", second); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := s.GetAnswer(ctx, "user-a", 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on overwrite: %v -> %v", first.CreatedAt, got.CreatedAt)
	}
	if got.Answer != "A1 revised" {
		t.Errorf("answer = %q, want revised text", got.Answer)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestMemoryStore_ListAnswersOrdered(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		a := &Answer{QuestionID: id, QuestionText: "Q", Answer: "A"}
		if err := s.PutAnswer(ctx, "user-a", a); err != nil {
			t.Fatalf("put %d failed: %v", id, err)
		}
	}

	answers, err := s.ListAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("len = %d, want 3", len(answers))
	}
	for i, want := range []int64{1, 2, 3} {
		if answers[i].QuestionID != want {
			t.Errorf("answers[%d].QuestionID = %d, want %d", i, answers[i].QuestionID, want)
		}
	}
}

func TestMemoryStore_BatchAndSummary(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	batch := []*Answer{
		{QuestionID: 1, QuestionText: "Q1", Answer: "A1"},
		{QuestionID: 2, QuestionText: "Q2", Answer: "A2"},
	}
	if err := s.PutAnswers(ctx, "user-a", batch); err != nil {
		t.Fatalf("batch put failed: %v", err)
	}

	count, err := s.CountAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if _, err := s.GetSummary(ctx, "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("summary before write: err = %v, want ErrNotFound", err)
	}
	sum := &UserSummary{UserID: "user-a", TotalAnswers: count, LastUpdated: time.Now().UTC()}
	if err := s.MergeSummary(ctx, sum); err != nil {
		t.Fatalf("merge summary failed: %v", err)
	}
	got, err := s.GetSummary(ctx, "user-a")
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if got.TotalAnswers != 2 {
		t.Errorf("total_answers = %d, want 2", got.TotalAnswers)
	}
}

func TestMemoryStore_GetAnswerMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetAnswer(context.Background(), "user-a", 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
