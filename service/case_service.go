package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/export"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
)

type CaseService struct {
	cases    CaseStore
	payments PaymentStore
	notes    NoteStore
	files    storage.Storage
	logger   *slog.Logger
}

type NoteStore interface {
	Create(ctx context.Context, caseID int64, content string) (*dto.Note, error)
	ListByCase(ctx context.Context, caseID int64) ([]dto.Note, error)
}

func NewCaseService(cases CaseStore, payments PaymentStore, notes NoteStore, files storage.Storage, logger *slog.Logger) *CaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaseService{cases: cases, payments: payments, notes: notes, files: files, logger: logger}
}

func (s *CaseService) Create(ctx context.Context, req *dto.CreateCaseRequest) (*dto.Case, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", dto.ErrInvalidInput)
	}
	c, err := s.cases.Create(ctx, title, strings.TrimSpace(req.Description))
	if err != nil {
		return nil, err
	}
	s.logger.Info("case created", "case_id", c.ID)
	return c, nil
}

func (s *CaseService) List(ctx context.Context) ([]dto.Case, error) {
	return s.cases.List(ctx)
}

// Get returns the case with its payments in upload order and its notes
// newest first.
func (s *CaseService) Get(ctx context.Context, id int64) (*dto.CaseDetail, error) {
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByCase(ctx, id)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByCase(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CaseDetail{
		Case:        *c,
		Payments:    payments,
		Notes:       notes,
		TotalAmount: export.Total(payments).Display(),
	}, nil
}

// AddNote attaches a note to the case. Blank notes are rejected.
func (s *CaseService) AddNote(ctx context.Context, caseID int64, req *dto.CreateNoteRequest) (*dto.Note, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: note cannot be empty", dto.ErrInvalidInput)
	}
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}
	n, err := s.notes.Create(ctx, caseID, content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("note added", "case_id", caseID, "note_id", n.ID)
	return n, nil
}

func (s *CaseService) ListNotes(ctx context.Context, caseID int64) ([]dto.Note, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.notes.ListByCase(ctx, caseID)
}

// Delete removes the case with its payments, notes and stored screenshots.
func (s *CaseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.cases.Get(ctx, id); err != nil {
		return err
	}
	payments, err := s.payments.ListByCase(ctx, id)
	if err != nil {
		return err
	}
	if err := s.cases.Delete(ctx, id); err != nil {
		return err
	}
	for _, p := range payments {
		if err := s.files.Delete(p.StoredFilename); err != nil {
			s.logger.Warn("stored file not removed", "case_id", id, "file", p.StoredFilename, "error", err)
		}
	}
	s.logger.Info("case deleted", "case_id", id, "payments", len(payments))
	return nil
}
