package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, title, description string) (*dto.Case, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, description, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert case: %w", err)
	}
	return &dto.Case{ID: id, Title: title, Description: description, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *CaseRepository) Get(ctx context.Context, id int64) (*dto.Case, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at, updated_at FROM cases WHERE id = ?`, id)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dto.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case %d: %w", id, err)
	}
	return c, nil
}

// List returns cases newest first.
func (r *CaseRepository) List(ctx context.Context) ([]dto.Case, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, created_at, updated_at FROM cases ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	cases := []dto.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

// Delete removes the case and, through the foreign keys, its payments and notes.
func (r *CaseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete case %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dto.ErrCaseNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(s scanner) (*dto.Case, error) {
	var (
		c                dto.Case
		created, updated string
	)
	if err := s.Scan(&c.ID, &c.Title, &c.Description, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}
