package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel is the payment app a screenshot was taken from.
type Channel string

const (
	ChannelPhonePe    Channel = "PhonePe"
	ChannelGooglePay  Channel = "Google Pay"
	ChannelPaytm      Channel = "Paytm"
	ChannelGenericUPI Channel = "UPI"
)

// TxnStatus is the normalised status word printed on the receipt.
type TxnStatus string

const (
	StatusSuccessful TxnStatus = "Successful"
	StatusCompleted  TxnStatus = "Completed"
	StatusFailed     TxnStatus = "Failed"
	StatusPending    TxnStatus = "Pending"
	StatusDeclined   TxnStatus = "Declined"
)

// CurrencyINR is the only currency a UPI receipt can carry.
const CurrencyINR = "INR"

// PaymentRecord is the structured transaction recovered from one screenshot.
// Empty strings, an invalid Amount and a nil TransactionTime all mean
// "not found"; none of them is an error.
type PaymentRecord struct {
	Channel         Channel             `json:"channel"`
	PayerName       string              `json:"payer_name"`
	PayeeName       string              `json:"payee_name"`
	PayeeVPA        string              `json:"payee_vpa"`
	BankName        string              `json:"bank_name"`
	Amount          decimal.NullDecimal `json:"amount_inr"`
	Currency        string              `json:"currency"`
	UTR             string              `json:"utr"`
	UPITxnID        string              `json:"upi_txn_id"`
	Status          TxnStatus           `json:"txn_status"`
	TransactionTime *time.Time          `json:"txn_time"`
	RawText         string              `json:"raw_text"`
}

// UPIIntent is the payload of a "upi://pay" QR code found on a screenshot.
// It is reported next to the record and never merged into it.
type UPIIntent struct {
	PayeeVPA  string `json:"pa"`
	PayeeName string `json:"pn,omitempty"`
	Amount    string `json:"am,omitempty"`
	Currency  string `json:"cu,omitempty"`
	Note      string `json:"tn,omitempty"`
	RawURI    string `json:"raw_uri"`
}

// Payment is a PaymentRecord persisted against a case.
type Payment struct {
	ID             int64  `json:"id"`
	CaseID         int64  `json:"case_id"`
	SourceFilename string `json:"source_filename"`
	StoredFilename string `json:"stored_filename"`
	Remarks        string `json:"remarks"`
	Notes          string `json:"notes"`
	// OCRConfidence is the engine's mean confidence (0-100) for RawText;
	// nil when the text came from a PDF text layer or an unscored engine.
	OCRConfidence *float64  `json:"ocr_confidence"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PaymentRecord
}
