package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// ParseUPIIntent parses a "upi://pay?pa=...&pn=...&am=..." URI, the payload
// of the collect/pay QR codes UPI apps render. A URI without a payee
// address is rejected.
func ParseUPIIntent(raw string) (*dto.UPIIntent, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse upi uri: %w", err)
	}
	if !strings.EqualFold(u.Scheme, "upi") {
		return nil, fmt.Errorf("not a upi uri: scheme %q", u.Scheme)
	}

	q := u.Query()
	pa := strings.ToLower(strings.TrimSpace(q.Get("pa")))
	if pa == "" || !strings.Contains(pa, "@") {
		return nil, fmt.Errorf("upi uri has no payee address")
	}

	return &dto.UPIIntent{
		PayeeVPA:  pa,
		PayeeName: strings.TrimSpace(q.Get("pn")),
		Amount:    strings.TrimSpace(q.Get("am")),
		Currency:  strings.ToUpper(strings.TrimSpace(q.Get("cu"))),
		Note:      strings.TrimSpace(q.Get("tn")),
		RawURI:    raw,
	}, nil
}
