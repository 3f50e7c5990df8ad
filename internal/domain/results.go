package domain

// Sort fields accepted by CandidateFilter.
const (
	SortCreatedAt = "createdAt"
	SortScore     = "score"
	SortTimeUsed  = "timeUsed"
	SortName      = "name"
)

// CandidateFilter selects candidate records for administration.
// Zero Limit means no limit.
type CandidateFilter struct {
	State  SessionState
	Search string
	SortBy string
	Asc    bool
	Offset int
	Limit  int
}

// StateStats counts candidates per lifecycle state.
type StateStats struct {
	Total      int `json:"total"`
	Submitted  int `json:"submitted"`
	InProgress int `json:"inProgress"`
	NotStarted int `json:"notStarted"`
}

// ResultsPage is one page of candidate records plus totals.
type ResultsPage struct {
	Candidates []Candidate `json:"users"`
	Count      int         `json:"count"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Stats      StateStats  `json:"stats"`
}

// ScoreStats summarizes submitted scores.
type ScoreStats struct {
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
	Lowest  int     `json:"lowest"`
	Median  float64 `json:"median"`
}

// TimeStats summarizes submitted elapsed times in seconds.
type TimeStats struct {
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

// Distribution buckets submitted scores by share of questions answered correctly.
type Distribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

// Analytics is the aggregate results report.
type Analytics struct {
	Overview struct {
		StateStats
		CompletionRate float64 `json:"completionRate"`
	} `json:"overview"`
	Scores       ScoreStats   `json:"scores"`
	Time         TimeStats    `json:"time"`
	Distribution Distribution `json:"distribution"`
	Qualified    struct {
		Count      int     `json:"count"`
		Percentage float64 `json:"percentage"`
	} `json:"qualified"`
}

// Add buckets one submitted candidate by the share of their snapshot answered
// correctly: excellent >= 80%, good >= 60%, average >= 40%, poor below.
func (d *Distribution) Add(c Candidate) {
	total := 0
	if c.Session != nil {
		total = len(c.Session.Questions)
	}
	pct := 0
	if total > 0 {
		pct = c.Score * 100 / total
	}
	switch {
	case pct >= 80:
		d.Excellent++
	case pct >= 60:
		d.Good++
	case pct >= 40:
		d.Average++
	default:
		d.Poor++
	}
}
