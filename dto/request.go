package dto

import (
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CreateCaseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UploadPaymentsRequest carries payment screenshots for one case.
type UploadPaymentsRequest struct {
	Files []*multipart.FileHeader `form:"files[]"`
}

func (r *UploadPaymentsRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}

// UpdatePaymentRequest is a manual correction. Nil fields are left alone;
// an empty Amount or TransactionTime clears the stored value.
type UpdatePaymentRequest struct {
	Channel         *string `json:"channel"`
	PayerName       *string `json:"payer_name"`
	PayeeName       *string `json:"payee_name"`
	PayeeVPA        *string `json:"payee_vpa"`
	BankName        *string `json:"bank_name"`
	Amount          *string `json:"amount_inr"`
	UTR             *string `json:"utr"`
	UPITxnID        *string `json:"upi_txn_id"`
	Status          *string `json:"txn_status"`
	TransactionTime *string `json:"txn_time"`
	Remarks         *string `json:"remarks"`
	Notes           *string `json:"notes"`
}

// Apply validates the request and writes the provided fields onto p.
func (r *UpdatePaymentRequest) Apply(p *Payment) error {
	var amount *decimal.NullDecimal
	if r.Amount != nil {
		v := strings.TrimSpace(strings.ReplaceAll(*r.Amount, ",", ""))
		nd := decimal.NullDecimal{}
		if v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil || d.IsNegative() {
				return fmt.Errorf("%w: amount_inr %q", ErrInvalidInput, *r.Amount)
			}
			nd = decimal.NewNullDecimal(d.Round(2))
		}
		amount = &nd
	}

	var when **time.Time
	if r.TransactionTime != nil {
		var t *time.Time
		if v := strings.TrimSpace(*r.TransactionTime); v != "" {
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("%w: txn_time must be RFC 3339: %q", ErrInvalidInput, v)
			}
			t = &parsed
		}
		when = &t
	}

	setString(&p.PayerName, r.PayerName)
	setString(&p.PayeeName, r.PayeeName)
	setString(&p.BankName, r.BankName)
	setString(&p.UTR, r.UTR)
	setString(&p.UPITxnID, r.UPITxnID)
	setString(&p.Remarks, r.Remarks)
	setString(&p.Notes, r.Notes)
	if r.PayeeVPA != nil {
		p.PayeeVPA = strings.ToLower(strings.TrimSpace(*r.PayeeVPA))
	}
	if r.Channel != nil {
		p.Channel = Channel(strings.TrimSpace(*r.Channel))
	}
	if r.Status != nil {
		p.Status = TxnStatus(strings.TrimSpace(*r.Status))
	}
	if amount != nil {
		p.Amount = *amount
	}
	if when != nil {
		p.TransactionTime = *when
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

type ExtractTextRequest struct {
	Text string `json:"text"`
}
