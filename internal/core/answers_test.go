package core

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/store"
)

func newTestService() (*AnswerService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewAnswerService(st, zap.NewNop()), st
}

func int64p(v int64) *int64 { return &v }
func strp(v string) *string { return &v }

func TestSaveAnswers_RejectsEmpty(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SaveAnswers(context.Background(), "user-a", map[int64]string{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSaveAnswers_RoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := map[int64]string{1: "honesty", 2: "travel", 17: "a serious relationship"}
	if _, err := svc.SaveAnswers(ctx, "user-a", in); err != nil {
		t.Fatalf("SaveAnswers failed: %v", err)
	}

	got, set, err := svc.GetAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetAnswers failed: %v", err)
	}
	if set == nil {
		t.Fatal("expected a saved record")
	}
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	for id, want := range in {
		if got[id] != want {
			t.Errorf("answer[%d] = %q, want %q", id, got[id], want)
		}
	}
}

func TestGetAnswers_MissingUserIsEmptyNotError(t *testing.T) {
	svc, _ := newTestService()

	got, set, err := svc.GetAnswers(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetAnswers failed: %v", err)
	}
	if set != nil {
		t.Errorf("set = %+v, want nil", set)
	}
	if len(got) != 0 {
		t.Errorf("answers = %v, want empty", got)
	}
}

func TestGetAnswers_DropsUnparsableKeys(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	// A record written outside the normal path can carry non-integer keys.
	if _, err := st.SaveAnswerSet(ctx, "user-a", map[string]string{
		"1":    "kept",
		"oops": "dropped",
		"2":    "also kept",
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, _, err := svc.GetAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetAnswers failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (invalid key silently dropped)", len(got))
	}
	if got[1] != "kept" || got[2] != "also kept" {
		t.Errorf("answers = %v", got)
	}
}

func TestUpdateAnswer_RejectsBlank(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, blank := range []string{"", "   ", "\t\n"} {
		if _, err := svc.UpdateAnswer(ctx, "user-a", 1, blank); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("answer %q: err = %v, want ErrInvalidInput", blank, err)
		}
	}
}

func TestUpdateAnswer_MissingParent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateAnswer(context.Background(), "ghost", 1, "an answer")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}

func TestUpdateAnswer_ReturnsStoredTimestamp(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SaveAnswers(ctx, "user-a", map[int64]string{1: "old"}); err != nil {
		t.Fatalf("SaveAnswers failed: %v", err)
	}

	updatedAt, err := svc.UpdateAnswer(ctx, "user-a", 1, "new")
	if err != nil {
		t.Fatalf("UpdateAnswer failed: %v", err)
	}
	if updatedAt.IsZero() {
		t.Fatal("updated_at is zero, want the stored timestamp")
	}

	_, set, err := svc.GetAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetAnswers failed: %v", err)
	}
	if !set.UpdatedAt.Equal(updatedAt) {
		t.Errorf("stored updated_at = %v, returned %v", set.UpdatedAt, updatedAt)
	}
}

func TestStats_CountsOnlyNonBlankAnswers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SaveAnswers(ctx, "user-a", map[int64]string{1: "x", 2: "", 3: "  "}); err != nil {
		t.Fatalf("SaveAnswers failed: %v", err)
	}

	stats, err := svc.Stats(ctx, "user-a")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalQuestions != 3 {
		t.Errorf("total_questions = %d, want 3", stats.TotalQuestions)
	}
	if stats.CompletedQuestions != 1 {
		t.Errorf("completed_questions = %d, want 1", stats.CompletedQuestions)
	}
	if stats.CompletionPercentage != 33.33 {
		t.Errorf("completion_percentage = %v, want 33.33", stats.CompletionPercentage)
	}
}

func TestStats_MissingUserIsZeroValued(t *testing.T) {
	svc, _ := newTestService()

	stats, err := svc.Stats(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalQuestions != 0 || stats.CompletedQuestions != 0 || stats.CompletionPercentage != 0 {
		t.Errorf("stats = %+v, want zero values", stats)
	}
	if stats.LastUpdated != nil || stats.CreatedAt != nil {
		t.Errorf("timestamps should be nil for a missing user: %+v", stats)
	}
}

func TestSaveAnswer_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SaveAnswer(ctx, "user-a", 1, "Q1", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank answer: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SaveAnswer(ctx, "user-a", 1, " ", "A1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank question text: err = %v, want ErrInvalidInput", err)
	}
}

func TestSaveAnswer_RefreshesSummary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SaveAnswer(ctx, "user-a", 1, "Q1", "A1"); err != nil {
		t.Fatalf("SaveAnswer failed: %v", err)
	}
	if err := svc.SaveAnswer(ctx, "user-a", 2, "Q2", "A2"); err != nil {
		t.Fatalf("SaveAnswer failed: %v", err)
	}

	sum, err := svc.Summary(ctx, "user-a")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.TotalAnswers != 2 {
		t.Errorf("total_answers = %d, want 2", sum.TotalAnswers)
	}
	if sum.UserID != "user-a" {
		t.Errorf("user_id = %q, want user-a", sum.UserID)
	}
}

func TestSaveAnswersBulk_RejectsEmptyList(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SaveAnswersBulk(context.Background(), "user-a", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSaveAnswersBulk_MissingFieldFailsWholeRequest(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	items := []AnswerItem{
		{QuestionID: int64p(1), QuestionText: strp("Q1"), Answer: strp("A1")},
		{QuestionID: int64p(2), QuestionText: strp("Q2")}, // answer field absent
	}
	_, err := svc.SaveAnswersBulk(ctx, "user-a", items)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// Validation runs before any mutation; the good item must not be stored.
	count, err := st.CountAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestSaveAnswersBulk_SkipsBlankAnswers(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	items := []AnswerItem{
		{QuestionID: int64p(1), QuestionText: strp("Q1"), Answer: strp("A1")},
		{QuestionID: int64p(2), QuestionText: strp("Q2"), Answer: strp("")},
	}
	count, err := svc.SaveAnswersBulk(ctx, "user-a", items)
	if err != nil {
		t.Fatalf("SaveAnswersBulk failed: %v", err)
	}
	if count != 1 {
		t.Errorf("stored count = %d, want 1", count)
	}

	live, err := st.CountAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if live != 1 {
		t.Errorf("live count = %d, want 1", live)
	}

	// The summary reflects the live document count, not the request length.
	sum, err := svc.Summary(ctx, "user-a")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.TotalAnswers != 1 {
		t.Errorf("total_answers = %d, want 1", sum.TotalAnswers)
	}

	if _, err := st.GetAnswer(ctx, "user-a", 2); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("blank-answer item should not be stored, got err = %v", err)
	}
}

func TestListAnswers_Ordered(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	items := []AnswerItem{
		{QuestionID: int64p(5), QuestionText: strp("Q5"), Answer: strp("A5")},
		{QuestionID: int64p(1), QuestionText: strp("Q1"), Answer: strp("A1")},
		{QuestionID: int64p(3), QuestionText: strp("Q3"), Answer: strp("A3")},
	}
	if _, err := svc.SaveAnswersBulk(ctx, "user-a", items); err != nil {
		t.Fatalf("bulk save failed: %v", err)
	}

	answers, err := svc.ListAnswers(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListAnswers failed: %v", err)
	}
	for i, want := range []int64{1, 3, 5} {
		if answers[i].QuestionID != want {
			t.Errorf("answers[%d].QuestionID = %d, want %d", i, answers[i].QuestionID, want)
		}
	}
}
