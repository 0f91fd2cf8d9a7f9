package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUPIIntent(t *testing.T) {
	intent, err := ParseUPIIntent("upi://pay?pa=Sharma.Store@YBL&pn=Sharma%20General%20Store&am=450.00&cu=inr&tn=order%2042")
	require.NoError(t, err)

	assert.Equal(t, "sharma.store@ybl", intent.PayeeVPA)
	assert.Equal(t, "Sharma General Store", intent.PayeeName)
	assert.Equal(t, "450.00", intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "order 42", intent.Note)
}

func TestParseUPIIntentRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/?pa=a@b",
		"upi://pay?pn=NoAddress",
		"upi://pay?pa=missing-at",
	} {
		_, err := ParseUPIIntent(in)
		assert.Error(t, err, in)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"receipt.png":            "receipt.png",
		"../../etc/passwd":       "passwd",
		`C:\Users\me\shot 1.jpg`: "shot_1.jpg",
		"résumé.pdf":             "resume.pdf",
		"...":                    "file",
		"pay$ment(1).jpeg":       "pay_ment_1_.jpeg",
		"स्क्रीनशॉट.png":         "png",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestFileExt(t *testing.T) {
	assert.Equal(t, "jpeg", FileExt("Shot.JPEG"))
	assert.Equal(t, "", FileExt("noext"))
}
