package dto

import "time"

// Case groups the payment evidence collected for one investigation.
type Case struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Note is a free-text case note added by a case worker.
type Note struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CaseDetail struct {
	Case
	Payments []Payment `json:"payments"`
	// Notes are newest first.
	Notes []Note `json:"notes"`
	// TotalAmount is the display sum of recovered amounts, e.g. "₹1,700.00".
	TotalAmount string `json:"total_amount_inr"`
}
