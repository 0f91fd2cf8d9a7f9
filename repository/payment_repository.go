package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

const paymentColumns = `id, case_id, channel, payer_name, payee_name, payee_vpa, bank_name,
	amount_inr, currency, utr, upi_txn_id, txn_status, txn_time, raw_text,
	source_filename, stored_filename, remarks, notes, ocr_confidence, created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts p and fills in its ID and timestamps.
func (r *PaymentRepository) Create(ctx context.Context, p *dto.Payment) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `INSERT INTO payments (
		case_id, channel, payer_name, payee_name, payee_vpa, bank_name,
		amount_inr, currency, utr, upi_txn_id, txn_status, txn_time, raw_text,
		source_filename, stored_filename, remarks, notes, ocr_confidence, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CaseID, string(p.Channel), p.PayerName, p.PayeeName, p.PayeeVPA, p.BankName,
		amountValue(p.Amount), currencyOrDefault(p.Currency), p.UTR, p.UPITxnID, string(p.Status),
		timeValue(p.TransactionTime), p.RawText,
		p.SourceFilename, p.StoredFilename, p.Remarks, p.Notes, confidenceValue(p.OCRConfidence),
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int64) (*dto.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dto.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

// ListByCase returns a case's payments in upload order.
func (r *PaymentRepository) ListByCase(ctx context.Context, caseID int64) ([]dto.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE case_id = ? ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list payments for case %d: %w", caseID, err)
	}
	defer rows.Close()

	payments := []dto.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// Update overwrites every mutable column of p.
func (r *PaymentRepository) Update(ctx context.Context, p *dto.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE payments SET
		channel = ?, payer_name = ?, payee_name = ?, payee_vpa = ?, bank_name = ?,
		amount_inr = ?, currency = ?, utr = ?, upi_txn_id = ?, txn_status = ?, txn_time = ?,
		raw_text = ?, remarks = ?, notes = ?, ocr_confidence = ?, updated_at = ?
		WHERE id = ?`,
		string(p.Channel), p.PayerName, p.PayeeName, p.PayeeVPA, p.BankName,
		amountValue(p.Amount), currencyOrDefault(p.Currency), p.UTR, p.UPITxnID, string(p.Status),
		timeValue(p.TransactionTime), p.RawText, p.Remarks, p.Notes, confidenceValue(p.OCRConfidence),
		formatTime(p.UpdatedAt),
		p.ID)
	if err != nil {
		return fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dto.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dto.ErrPaymentNotFound
	}
	return nil
}

func scanPayment(s scanner) (*dto.Payment, error) {
	var (
		p                dto.Payment
		channel, status  string
		amount, txnTime  sql.NullString
		confidence       sql.NullFloat64
		created, updated string
	)
	err := s.Scan(&p.ID, &p.CaseID, &channel, &p.PayerName, &p.PayeeName, &p.PayeeVPA, &p.BankName,
		&amount, &p.Currency, &p.UTR, &p.UPITxnID, &status, &txnTime, &p.RawText,
		&p.SourceFilename, &p.StoredFilename, &p.Remarks, &p.Notes, &confidence, &created, &updated)
	if err != nil {
		return nil, err
	}

	p.Channel = dto.Channel(channel)
	p.Status = dto.TxnStatus(status)
	if amount.Valid {
		if d, err := decimal.NewFromString(amount.String); err == nil {
			p.Amount = decimal.NewNullDecimal(d)
		}
	}
	if txnTime.Valid {
		if t, err := time.Parse(timeLayout, txnTime.String); err == nil {
			p.TransactionTime = &t
		}
	}
	if confidence.Valid {
		p.OCRConfidence = &confidence.Float64
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

// amountValue stores amounts as fixed two-place text so no precision is lost.
func amountValue(a decimal.NullDecimal) any {
	if !a.Valid {
		return nil
	}
	return a.Decimal.StringFixed(2)
}

// timeValue keeps the receipt's own offset so the wall clock survives a
// round trip.
func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}

func confidenceValue(c *float64) any {
	if c == nil {
		return nil
	}
	return *c
}

func currencyOrDefault(c string) string {
	if c == "" {
		return dto.CurrencyINR
	}
	return c
}
