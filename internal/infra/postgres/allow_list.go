package postgres

import (
	"context"
	"errors"
	"fmt"

	"assessment-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AllowList is the Postgres-backed eligibility registry.
type AllowList struct {
	pool *pgxpool.Pool
}

func NewAllowList(pool *pgxpool.Pool) *AllowList {
	return &AllowList{pool: pool}
}

func (l *AllowList) Lookup(ctx context.Context, email string) (domain.AllowedCandidate, error) {
	var e domain.AllowedCandidate
	err := l.pool.QueryRow(ctx,
		`SELECT email, name, phone, created_at FROM allowed_candidates WHERE email=$1`, email,
	).Scan(&e.Email, &e.Name, &e.Phone, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AllowedCandidate{}, domain.ErrNotAllowed
	}
	if err != nil {
		return domain.AllowedCandidate{}, fmt.Errorf("lookup allowed: %w", err)
	}
	return e, nil
}

func (l *AllowList) List(ctx context.Context) ([]domain.AllowedCandidate, error) {
	rows, err := l.pool.Query(ctx, `SELECT email, name, phone, created_at FROM allowed_candidates ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list allowed: %w", err)
	}
	defer rows.Close()

	out := []domain.AllowedCandidate{}
	for rows.Next() {
		var e domain.AllowedCandidate
		if err := rows.Scan(&e.Email, &e.Name, &e.Phone, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allowed: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *AllowList) Add(ctx context.Context, entry domain.AllowedCandidate) (domain.AllowedCandidate, error) {
	tag, err := l.pool.Exec(ctx, `
		INSERT INTO allowed_candidates (email, name, phone, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`,
		entry.Email, entry.Name, entry.Phone, entry.CreatedAt)
	if err != nil {
		return domain.AllowedCandidate{}, fmt.Errorf("add allowed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.AllowedCandidate{}, domain.ErrAllowedExists
	}
	return entry, nil
}

func (l *AllowList) Remove(ctx context.Context, email string) error {
	tag, err := l.pool.Exec(ctx, `DELETE FROM allowed_candidates WHERE email=$1`, email)
	if err != nil {
		return fmt.Errorf("remove allowed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotAllowed
	}
	return nil
}
