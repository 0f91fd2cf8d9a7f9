// Package export renders a case's payments as CSV, XLSX and PDF evidence
// bundles. Row transforms are pure functions over dto.Payment.
package export

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

const (
	maxNotesLen   = 500
	maxOCRTextLen = 4000
)

// CSVRow is one line of the full CSV export.
type CSVRow struct {
	Channel         string `csv:"Channel"`
	PayerName       string `csv:"Payer Name"`
	PayeeName       string `csv:"Payee Name"`
	PayeeVPA        string `csv:"Payee VPA"`
	Bank            string `csv:"Bank"`
	Amount          string `csv:"Amount (INR)"`
	Currency        string `csv:"Currency"`
	UTR             string `csv:"UTR"`
	UPITxnID        string `csv:"UPI Transaction ID"`
	Status          string `csv:"Status"`
	TransactionTime string `csv:"Transaction Time"`
	SourceFile      string `csv:"Source File"`
	Remarks         string `csv:"Remarks"`
	Notes           string `csv:"Notes"`
	OCRText         string `csv:"OCR Text"`
}

// ExcelRow is one line of the investigation-format workbook.
type ExcelRow struct {
	SlNo          int
	DebitedBank   string
	UTR           string
	UPIRefNo      string
	Amount        string
	Date          string
	Time          string
	UPIIDFrom     string
	UPIIDTo       string
	TransactionID string
	CreditedBank  string
}

var excelHeaders = []string{
	"Sl.NO",
	"Bank Name/ Wallet (Debited)",
	"UTR",
	"UPI reference No",
	"Amount",
	"Date of transaction",
	"Time of transaction",
	"UPI ID From",
	"UPI ID To",
	"Transaction ID",
	"Bank Name (Credited)",
}

func (r ExcelRow) values() []any {
	return []any{r.SlNo, r.DebitedBank, r.UTR, r.UPIRefNo, r.Amount, r.Date, r.Time,
		r.UPIIDFrom, r.UPIIDTo, r.TransactionID, r.CreditedBank}
}

func ToCSVRow(p dto.Payment) CSVRow {
	row := CSVRow{
		Channel:    string(p.Channel),
		PayerName:  p.PayerName,
		PayeeName:  p.PayeeName,
		PayeeVPA:   p.PayeeVPA,
		Bank:       p.BankName,
		Amount:     FormatAmount(p.Amount),
		Currency:   p.Currency,
		UTR:        p.UTR,
		UPITxnID:   p.UPITxnID,
		Status:     string(p.Status),
		SourceFile: p.SourceFilename,
		Remarks:    p.Remarks,
		Notes:      truncate(p.Notes, maxNotesLen),
		OCRText:    truncate(p.RawText, maxOCRTextLen),
	}
	if row.Currency == "" {
		row.Currency = dto.CurrencyINR
	}
	if p.TransactionTime != nil {
		row.TransactionTime = p.TransactionTime.Format("2006-01-02 15:04:05")
	}
	return row
}

// ToExcelRow maps a payment onto the workbook columns. slNo is 1-based.
func ToExcelRow(slNo int, p dto.Payment) ExcelRow {
	row := ExcelRow{
		SlNo:          slNo,
		DebitedBank:   p.BankName,
		UTR:           p.UTR,
		UPIRefNo:      p.UPITxnID,
		Amount:        FormatAmount(p.Amount),
		UPIIDFrom:     p.PayerName,
		UPIIDTo:       p.PayeeVPA,
		TransactionID: p.UPITxnID,
		CreditedBank:  p.PayeeName,
	}
	if row.UPIIDTo == "" {
		row.UPIIDTo = GuessVPA(p.RawText)
	}
	if p.TransactionTime != nil {
		row.Date = p.TransactionTime.Format("02-01-2006")
		row.Time = p.TransactionTime.Format("03:04 PM")
	}
	return row
}

// FormatAmount renders an amount with two decimals, or "" when absent.
func FormatAmount(a decimal.NullDecimal) string {
	if !a.Valid {
		return ""
	}
	return a.Decimal.StringFixed(2)
}

// Total sums the amounts that were recovered, in paise.
func Total(payments []dto.Payment) *money.Money {
	total := money.New(0, money.INR)
	for _, p := range payments {
		if !p.Amount.Valid {
			continue
		}
		paise := p.Amount.Decimal.Shift(2).Round(0).IntPart()
		if sum, err := total.Add(money.New(paise, money.INR)); err == nil {
			total = sum
		}
	}
	return total
}

var (
	upiIDLabelRe = regexp.MustCompile(`(?i)\bUPI\s*ID\s*[:\-]?\s*([a-z0-9._\-]{2,}@[a-z0-9]{2,})`)
	looseVPARe   = regexp.MustCompile(`(?i)\b([a-z0-9._\-]{2,}@[a-z0-9]{2,})\b`)
)

// GuessVPA finds a UPI handle in raw OCR text for display when extraction
// recorded none. A handle labelled "UPI ID" wins over the first handle in
// the text. The guess is never stored.
func GuessVPA(raw string) string {
	if m := upiIDLabelRe.FindStringSubmatch(raw); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	if m := looseVPARe.FindStringSubmatch(raw); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
