package app_test

import (
	"fmt"
	"math"
	"testing"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
)

func bank(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{ID: fmt.Sprintf("q%d", i), Text: "question", Options: []string{"a", "b"}}
	}
	return out
}

func TestDrawReturnsDistinctSubset(t *testing.T) {
	src := bank(20)
	got := app.Draw(src, 15, nil)
	if len(got) != 15 {
		t.Fatalf("expected 15 questions, got %d", len(got))
	}
	known := map[string]bool{}
	for _, q := range src {
		known[q.ID] = true
	}
	seen := map[string]bool{}
	for _, q := range got {
		if !known[q.ID] {
			t.Fatalf("draw produced unknown question %s", q.ID)
		}
		if seen[q.ID] {
			t.Fatalf("draw repeated question %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestDrawSizes(t *testing.T) {
	cases := []struct {
		bank, n, want int
	}{
		{bank: 20, n: 15, want: 15},
		{bank: 4, n: 15, want: 4},
		{bank: 15, n: 15, want: 15},
		{bank: 0, n: 15, want: 0},
		{bank: 5, n: 0, want: 0},
		{bank: 5, n: -3, want: 0},
	}
	for _, tc := range cases {
		got := app.Draw(bank(tc.bank), tc.n, nil)
		if got == nil || len(got) != tc.want {
			t.Fatalf("Draw(bank=%d, n=%d): expected %d questions, got %v", tc.bank, tc.n, tc.want, got)
		}
	}
}

func TestDrawDoesNotMutateBank(t *testing.T) {
	src := bank(6)
	got := app.Draw(src, 6, func(int) int { return 0 })
	for i, q := range src {
		if q.ID != fmt.Sprintf("q%d", i) {
			t.Fatalf("bank reordered at %d: %s", i, q.ID)
		}
	}
	got[0].Options[0] = "changed"
	for _, q := range src {
		if q.Options[0] != "a" {
			t.Fatalf("snapshot options alias the bank")
		}
	}
}

func TestDrawCallsRandomDownward(t *testing.T) {
	var args []int
	app.Draw(bank(5), 3, func(n int) int {
		args = append(args, n)
		return n - 1
	})
	want := []int{5, 4, 3, 2}
	if len(args) != len(want) {
		t.Fatalf("expected %d random calls, got %v", len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("call %d: expected intn(%d), got intn(%d)", i, want[i], args[i])
		}
	}
}

func TestDrawIsUniform(t *testing.T) {
	const trials = 40000
	src := bank(4)
	// counts[position][question]
	var counts [4][4]int
	for i := 0; i < trials; i++ {
		for pos, q := range app.Draw(src, 4, nil) {
			var idx int
			fmt.Sscanf(q.ID, "q%d", &idx)
			counts[pos][idx]++
		}
	}
	expected := float64(trials) / 4
	for pos := range counts {
		for idx, n := range counts[pos] {
			if math.Abs(float64(n)-expected) > expected*0.05 {
				t.Fatalf("question %d at position %d seen %d times, expected about %.0f", idx, pos, n, expected)
			}
		}
	}
}
