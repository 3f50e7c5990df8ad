package app_test

import (
	"testing"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
)

func exampleSnapshot() domain.Snapshot {
	q := exampleQuiz()
	return domain.Snapshot{DurationSeconds: q.DurationMinutes * 60, Questions: q.Questions}
}

func TestScoreMixedAnswerKeys(t *testing.T) {
	got := app.Score(exampleSnapshot(), []domain.Response{
		{QuestionID: "Q1", SelectedOption: "1"},
		{QuestionID: "Q2", SelectedOption: "2"},
		{QuestionID: "Q3", SelectedOption: "0"},
	})
	if got != 2 {
		t.Fatalf("expected score 2, got %d", got)
	}
}

func TestScoreEdgeCases(t *testing.T) {
	snap := exampleSnapshot()
	cases := []struct {
		name      string
		responses []domain.Response
		want      int
	}{
		{name: "empty", responses: nil, want: 0},
		{name: "duplicates count independently", responses: []domain.Response{
			{QuestionID: "Q1", SelectedOption: "1"},
			{QuestionID: "Q1", SelectedOption: "1"},
		}, want: 2},
		{name: "unknown ids ignored", responses: []domain.Response{
			{QuestionID: "Q9", SelectedOption: "1"},
			{QuestionID: "Q1", SelectedOption: "1"},
		}, want: 1},
		{name: "unanswered", responses: []domain.Response{
			{QuestionID: "Q1", SelectedOption: domain.Unanswered},
		}, want: 0},
		{name: "unparseable selection", responses: []domain.Response{
			{QuestionID: "Q1", SelectedOption: "one"},
			{QuestionID: "Q2", SelectedOption: ""},
		}, want: 0},
		{name: "text answer out of range", responses: []domain.Response{
			{QuestionID: "Q2", SelectedOption: "7"},
		}, want: 0},
	}
	for _, tc := range cases {
		if got := app.Score(snap, tc.responses); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestScoreIndexTakesPrecedenceOverText(t *testing.T) {
	snap := domain.Snapshot{Questions: []domain.Question{
		{ID: "Q1", Options: []string{"Paris", "Rome"}, CorrectIndex: 1, CorrectText: "Paris"},
	}}
	if got := app.Score(snap, []domain.Response{{QuestionID: "Q1", SelectedOption: "0"}}); got != 0 {
		t.Fatalf("text must be ignored when an index is set, got %d", got)
	}
	if got := app.Score(snap, []domain.Response{{QuestionID: "Q1", SelectedOption: "1"}}); got != 1 {
		t.Fatalf("expected index answer to score, got %d", got)
	}
}

func TestScoreTextMatchIgnoresCase(t *testing.T) {
	snap := domain.Snapshot{Questions: []domain.Question{
		{ID: "Q1", Options: []string{"rome", "  PARIS "}, CorrectIndex: domain.NoCorrectIndex, CorrectText: "paris"},
	}}
	if got := app.Score(snap, []domain.Response{{QuestionID: "Q1", SelectedOption: "1"}}); got != 1 {
		t.Fatalf("expected case-insensitive text match, got %d", got)
	}
}

func TestScoreIsPure(t *testing.T) {
	snap := exampleSnapshot()
	responses := []domain.Response{{QuestionID: "Q1", SelectedOption: "1"}}
	first := app.Score(snap, responses)
	second := app.Score(snap, responses)
	if first != second || responses[0].SelectedOption != "1" || snap.Questions[0].CorrectIndex != 1 {
		t.Fatalf("scoring must not mutate inputs")
	}
}
