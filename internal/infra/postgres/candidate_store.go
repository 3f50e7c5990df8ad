package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const candidateColumns = `id, name, email, phone, has_started, has_submitted, session, responses,
	score, time_used_seconds, qualified, submitted_at, created_at, updated_at`

var sortColumns = map[string]string{
	domain.SortCreatedAt: "created_at",
	domain.SortScore:     "score",
	domain.SortTimeUsed:  "time_used_seconds",
	domain.SortName:      "name",
}

// CandidateStore persists candidate records. Update takes a row lock
// (SELECT ... FOR UPDATE) so concurrent start/submit calls for one candidate
// commit one at a time and each sees the previous commit.
type CandidateStore struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewCandidateStore(pool *pgxpool.Pool) *CandidateStore {
	return &CandidateStore{pool: pool, clock: time.Now}
}

func (s *CandidateStore) Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	now := s.clock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Responses == nil {
		c.Responses = []domain.Response{}
	}
	c.Email = strings.ToLower(c.Email)

	session, responses, err := encodeState(c)
	if err != nil {
		return domain.Candidate{}, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT DO NOTHING`,
		c.ID, c.Name, c.Email, c.Phone, c.HasStarted, c.HasSubmitted, session, responses,
		c.Score, c.TimeUsedSeconds, c.Qualified, c.SubmittedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("create candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Candidate{}, domain.ErrCandidateExists
	}
	return c, nil
}

func (s *CandidateStore) Get(ctx context.Context, id string) (domain.Candidate, error) {
	return scanCandidate(s.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id=$1`, id))
}

func (s *CandidateStore) GetByEmail(ctx context.Context, email string) (domain.Candidate, error) {
	return scanCandidate(s.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE email=$1`, strings.ToLower(email)))
}

func (s *CandidateStore) Update(ctx context.Context, id string, fn app.MutateFunc) (domain.Candidate, error) {
	var out domain.Candidate
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		c, err := scanCandidate(tx.QueryRow(ctx,
			`SELECT `+candidateColumns+` FROM candidates WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		changed, err := fn(&c)
		if err != nil {
			return err
		}
		if !changed {
			out = c
			return nil
		}

		c.UpdatedAt = s.clock()
		session, responses, err := encodeState(c)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE candidates SET name=$2, phone=$3, has_started=$4, has_submitted=$5, session=$6,
				responses=$7, score=$8, time_used_seconds=$9, qualified=$10, submitted_at=$11, updated_at=$12
			WHERE id=$1`,
			id, c.Name, c.Phone, c.HasStarted, c.HasSubmitted, session, responses,
			c.Score, c.TimeUsedSeconds, c.Qualified, c.SubmittedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update candidate: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return out, nil
}

func (s *CandidateStore) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error) {
	var (
		where []string
		args  []interface{}
	)
	switch filter.State {
	case domain.StateSubmitted:
		where = append(where, "has_submitted")
	case domain.StateInProgress:
		where = append(where, "has_started AND NOT has_submitted")
	case domain.StateNotStarted:
		where = append(where, "NOT has_started")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if filter.Asc {
		order = "ASC"
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates` + clause +
		` ORDER BY ` + column + ` ` + order + `, created_at ` + order + `, id ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	out := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *CandidateStore) Stats(ctx context.Context) (domain.StateStats, error) {
	var stats domain.StateStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE has_submitted),
			COUNT(*) FILTER (WHERE has_started AND NOT has_submitted),
			COUNT(*) FILTER (WHERE NOT has_started)
		FROM candidates`).Scan(&stats.Total, &stats.Submitted, &stats.InProgress, &stats.NotStarted)
	if err != nil {
		return domain.StateStats{}, fmt.Errorf("candidate stats: %w", err)
	}
	return stats, nil
}

func (s *CandidateStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM candidates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

func scanCandidate(row pgx.Row) (domain.Candidate, error) {
	var (
		c         domain.Candidate
		session   []byte
		responses []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.HasStarted, &c.HasSubmitted, &session, &responses,
		&c.Score, &c.TimeUsedSeconds, &c.Qualified, &c.SubmittedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}
	if len(session) > 0 {
		var snap domain.Snapshot
		if err := json.Unmarshal(session, &snap); err != nil {
			return domain.Candidate{}, fmt.Errorf("decode session: %w", err)
		}
		c.Session = &snap
	}
	c.Responses = []domain.Response{}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &c.Responses); err != nil {
			return domain.Candidate{}, fmt.Errorf("decode responses: %w", err)
		}
	}
	return c, nil
}

func encodeState(c domain.Candidate) (session, responses []byte, err error) {
	if c.Session != nil {
		if session, err = json.Marshal(c.Session); err != nil {
			return nil, nil, fmt.Errorf("encode session: %w", err)
		}
	}
	if responses, err = json.Marshal(c.Responses); err != nil {
		return nil, nil, fmt.Errorf("encode responses: %w", err)
	}
	return session, responses, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
