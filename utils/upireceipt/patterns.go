package upireceipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

var (
	amountRe = regexp.MustCompile(`(?i)(?:₹|\bINR|\bRs\.?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	// Google Pay prints a purely numeric "UPI transaction ID", PhonePe an
	// alphanumeric "Transaction ID" such as T2508231356...
	gpayTxnIDRe    = regexp.MustCompile(`(?i)\bUPI\s+transaction\s+ID\s*[:\-]?\s*([0-9]{8,})\b`)
	phonepeTxnIDRe = regexp.MustCompile(`(?i)\btransaction\s+ID\s*[:\-]?\s*([A-Za-z0-9]{10,})\b`)

	utrRe = regexp.MustCompile(`(?i)\bUTR\b\s*(?:no\.?|number)?\s*[:\-]?\s*([0-9]{8,16})\b`)

	vpaRe         = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9._\-]*@[a-z][a-z0-9]*)\b`)
	payeeMarkerRe = regexp.MustCompile(`(?i)\b(?:sent\s+to|paid\s+to|to)\b`)

	payeePhraseRe     = regexp.MustCompile(`(?i:\bpaid\s+to\b\s*[:\-]?|\bto\s*:)\s*([A-Z][A-Za-z.&' ]*[A-Za-z.])`)
	payeeStandaloneRe = regexp.MustCompile(`^To\s+([A-Z][A-Za-z.&' ]*[A-Za-z.])`)
	payeeLabelRe      = regexp.MustCompile(`(?i)^(?:paid|sent)\s+to\s*[:\-]?$`)
	nameLineRe        = regexp.MustCompile(`^([A-Z][A-Za-z.&' ]*[A-Za-z.])$`)
	payerRe           = regexp.MustCompile(`(?i:\bfrom\b)\s*[:\-]?\s*([A-Z][A-Za-z.&' ]*[A-Za-z.])`)

	statusRe = regexp.MustCompile(`(?i)\b(completed|successful|success|failed|pending|declined)\b`)
)

// payeeHeaderLines bounds the standalone "To NAME" search to the receipt header.
const payeeHeaderLines = 6

const maxNameLen = 255

// FindAmount returns the first currency-marked amount in document order.
func FindAmount(text string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

// FindUPITxnID returns the UPI transaction identifier. The numeric Google
// Pay form is tried before the alphanumeric PhonePe form.
func FindUPITxnID(text string) string {
	for _, re := range []*regexp.Regexp{gpayTxnIDRe, phonepeTxnIDRe} {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// FindUTR returns the 8-16 digit bank settlement reference.
func FindUTR(text string) string {
	if m := utrRe.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return ""
}

// FindPayeeVPA looks for a UPI handle on or just below a "Sent to" / "Paid
// to" / "To" line, then falls back to the first handle anywhere.
func FindPayeeVPA(text string) string {
	lines := SplitLines(text)
	for i, line := range lines {
		if !payeeMarkerRe.MatchString(line) {
			continue
		}
		for j := i; j < len(lines) && j <= i+2; j++ {
			if m := vpaRe.FindStringSubmatch(lines[j]); len(m) > 1 {
				return strings.ToLower(m[1])
			}
		}
	}
	if m := vpaRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}

// FindPayeeName prefers an explicit "Paid to NAME" / "To: NAME" phrase
// (PhonePe puts NAME on the line below a bare "Paid to") and otherwise takes
// a "To NAME" line from the receipt header.
func FindPayeeName(text string) string {
	lines := SplitLines(text)
	for i, line := range lines {
		if name := captureName(payeePhraseRe, line); name != "" {
			return name
		}
		if payeeLabelRe.MatchString(line) && i+1 < len(lines) {
			if name := captureName(nameLineRe, lines[i+1]); name != "" {
				return name
			}
		}
	}
	for i, line := range lines {
		if i >= payeeHeaderLines {
			break
		}
		if name := captureName(payeeStandaloneRe, line); name != "" {
			return name
		}
	}
	return ""
}

// FindPayerName returns the name following "From". Bank lines reading
// "Debited from ..." are not payer lines.
func FindPayerName(text string) string {
	for _, line := range SplitLines(text) {
		if debitedFromRe.MatchString(line) {
			continue
		}
		if name := captureName(payerRe, line); name != "" {
			return name
		}
	}
	return ""
}

// FindStatus returns the first status word, normalised.
func FindStatus(text string) dto.TxnStatus {
	m := statusRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	word := strings.ToLower(m[1])
	if word == "success" || word == "successful" {
		return dto.StatusSuccessful
	}
	// A Caser is stateful, so one is built per call.
	return dto.TxnStatus(cases.Title(language.English).String(word))
}

// captureName runs re against line and cleans group 1. When the name runs
// straight into a handle ("Ramesh Kumar ramesh@ybl") the handle's local part
// is dropped.
func captureName(re *regexp.Regexp, line string) string {
	loc := re.FindStringSubmatchIndex(line)
	if len(loc) < 4 || loc[2] < 0 {
		return ""
	}
	name := line[loc[2]:loc[3]]
	if loc[3] < len(line) && line[loc[3]] == '@' {
		if i := strings.LastIndexByte(name, ' '); i >= 0 {
			name = name[:i]
		} else {
			return ""
		}
	}
	name = strings.Join(strings.Fields(name), " ")
	return truncateRunes(name, maxNameLen)
}
