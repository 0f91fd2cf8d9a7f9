package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, caseID int64, content string) (*dto.Note, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO case_notes (case_id, content, created_at) VALUES (?, ?, ?)`,
		caseID, content, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &dto.Note{ID: id, CaseID: caseID, Content: content, CreatedAt: now}, nil
}

// ListByCase returns a case's notes newest first.
func (r *NoteRepository) ListByCase(ctx context.Context, caseID int64) ([]dto.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, content, created_at FROM case_notes WHERE case_id = ? ORDER BY id DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list notes for case %d: %w", caseID, err)
	}
	defer rows.Close()

	notes := []dto.Note{}
	for rows.Next() {
		var (
			n       dto.Note
			created string
		)
		if err := rows.Scan(&n.ID, &n.CaseID, &n.Content, &created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = parseTime(created)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
