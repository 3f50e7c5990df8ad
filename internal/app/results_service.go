package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"assessment-service/internal/domain"
	"go.uber.org/zap"
)

const defaultPageSize = 50

// ResultsQuery is the admin listing request.
type ResultsQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// ResultsService serves result review, analytics and export for admins.
type ResultsService struct {
	candidates CandidateRepository
	logger     *zap.Logger
}

func NewResultsService(candidates CandidateRepository, logger *zap.Logger) *ResultsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsService{candidates: candidates, logger: logger}
}

// ParseState maps a status filter to a lifecycle state; "" and "all" select everything.
func ParseState(status string) (domain.SessionState, error) {
	switch status {
	case "", "all":
		return "", nil
	case string(domain.StateSubmitted), string(domain.StateInProgress), string(domain.StateNotStarted):
		return domain.SessionState(status), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
}

func (s *ResultsService) List(ctx context.Context, q ResultsQuery) (domain.ResultsPage, error) {
	state, err := ParseState(q.Status)
	if err != nil {
		return domain.ResultsPage{}, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	sortBy := q.SortBy
	switch sortBy {
	case "":
		sortBy = domain.SortCreatedAt
	case domain.SortCreatedAt, domain.SortScore, domain.SortTimeUsed, domain.SortName:
	default:
		return domain.ResultsPage{}, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, sortBy)
	}

	candidates, total, err := s.candidates.List(ctx, domain.CandidateFilter{
		State:  state,
		Search: q.Search,
		SortBy: sortBy,
		Asc:    q.Order == "asc",
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		return domain.ResultsPage{}, err
	}
	stats, err := s.candidates.Stats(ctx)
	if err != nil {
		return domain.ResultsPage{}, err
	}

	return domain.ResultsPage{
		Candidates: candidates,
		Count:      len(candidates),
		Total:      total,
		Page:       q.Page,
		TotalPages: (total + q.Limit - 1) / q.Limit,
		Stats:      stats,
	}, nil
}

func (s *ResultsService) Get(ctx context.Context, id string) (domain.Candidate, error) {
	return s.candidates.Get(ctx, id)
}

// SetQualified records the admin's interview decision. Only submitted
// candidates can be qualified.
func (s *ResultsService) SetQualified(ctx context.Context, id string, qualified bool) (domain.Candidate, error) {
	updated, err := s.candidates.Update(ctx, id, func(c *domain.Candidate) (bool, error) {
		if !c.HasSubmitted {
			return false, domain.ErrNotSubmitted
		}
		c.Qualified = qualified
		return true, nil
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	s.logger.Info("qualification updated", zap.String("candidate_id", id), zap.Bool("qualified", qualified))
	return updated, nil
}

func (s *ResultsService) Delete(ctx context.Context, id string) error {
	if err := s.candidates.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("candidate result deleted", zap.String("candidate_id", id))
	return nil
}

// Analytics aggregates over every submitted record.
func (s *ResultsService) Analytics(ctx context.Context) (domain.Analytics, error) {
	var out domain.Analytics

	stats, err := s.candidates.Stats(ctx)
	if err != nil {
		return out, err
	}
	submitted, _, err := s.candidates.List(ctx, domain.CandidateFilter{State: domain.StateSubmitted})
	if err != nil {
		return out, err
	}

	out.Overview.StateStats = stats
	if stats.Total > 0 {
		out.Overview.CompletionRate = round2(float64(stats.Submitted) / float64(stats.Total) * 100)
	}

	if len(submitted) > 0 {
		scores := make([]int, 0, len(submitted))
		times := make([]float64, 0, len(submitted))
		for _, c := range submitted {
			scores = append(scores, c.Score)
			times = append(times, c.TimeUsedSeconds)
			if c.Qualified {
				out.Qualified.Count++
			}
			out.Distribution.Add(c)
		}
		sort.Ints(scores)
		sort.Float64s(times)

		scoreSum, timeSum := 0, 0.0
		for i := range scores {
			scoreSum += scores[i]
			timeSum += times[i]
		}
		n := len(scores)
		median := float64(scores[n/2])
		if n%2 == 0 {
			median = float64(scores[n/2-1]+scores[n/2]) / 2
		}
		out.Scores = domain.ScoreStats{
			Average: round2(float64(scoreSum) / float64(n)),
			Highest: scores[n-1],
			Lowest:  scores[0],
			Median:  round2(median),
		}
		out.Time = domain.TimeStats{
			Average: round2(timeSum / float64(n)),
			Highest: times[n-1],
			Lowest:  times[0],
		}
		out.Qualified.Percentage = round2(float64(out.Qualified.Count) / float64(n) * 100)
	}
	return out, nil
}

// exportHeader is the reporting projection of a candidate record.
var exportHeader = []string{"Name", "Email", "Phone", "Score", "Time Used (s)", "Status", "Qualified", "Date"}

// Export writes the filtered records as CSV, best score first.
func (s *ResultsService) Export(ctx context.Context, status string, w io.Writer) (int, error) {
	if status == "" {
		status = string(domain.StateSubmitted)
	}
	state, err := ParseState(status)
	if err != nil {
		return 0, err
	}
	candidates, _, err := s.candidates.List(ctx, domain.CandidateFilter{State: state, SortBy: domain.SortScore})
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	for _, c := range candidates {
		if err := cw.Write(ExportRow(c)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(candidates), cw.Error()
}

// ExportRow projects a record to {name, email, phone, score, timeUsed, status, qualified, date}.
func ExportRow(c domain.Candidate) []string {
	phone, score, timeUsed := c.Phone, "N/A", "N/A"
	if phone == "" {
		phone = "N/A"
	}
	if c.HasSubmitted {
		score = strconv.Itoa(c.Score)
		timeUsed = strconv.FormatFloat(c.TimeUsedSeconds, 'f', -1, 64)
	}
	status := "Not Started"
	switch c.State() {
	case domain.StateSubmitted:
		status = "Submitted"
	case domain.StateInProgress:
		status = "In Progress"
	}
	qualified := "No"
	if c.Qualified {
		qualified = "Yes"
	}
	return []string{c.Name, c.Email, phone, score, timeUsed, status, qualified, c.CreatedAt.Format("2006-01-02")}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
