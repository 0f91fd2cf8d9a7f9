package upireceipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

func TestFindAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Paid ₹1,234.50 to merchant", "1234.50"},
		{"INR 500", "500.00"},
		{"Amount Rs.99.9", "99.90"},
		{"₹ 1,00,000", "100000.00"},
		{"₹450\nUTR 523598765432\n₹999", "450.00"},
	}
	for _, tc := range cases {
		d, ok := FindAmount(tc.in)
		require.True(t, ok, tc.in)
		assert.Equal(t, tc.want, d.StringFixed(2), tc.in)
	}

	_, ok := FindAmount("Amount 500")
	assert.False(t, ok)
}

func TestFindUPITxnID(t *testing.T) {
	assert.Equal(t, "987654321", FindUPITxnID("Transaction ID ABCXYZ1234\nUPI transaction ID 987654321"))
	assert.Equal(t, "T2508231356123456789012", FindUPITxnID("Transaction ID\nT2508231356123456789012"))
	assert.Equal(t, "", FindUPITxnID("Transaction ID: ABC"))
	assert.Equal(t, "", FindUPITxnID(""))
}

func TestFindUTR(t *testing.T) {
	assert.Equal(t, "123456789012", FindUTR("UTR: 123456789012"))
	assert.Equal(t, "523598765432", FindUTR("UTR No. 523598765432"))
	assert.Equal(t, "12345678", FindUTR("utr number - 12345678"))
	assert.Equal(t, "", FindUTR("UTR 1234567"))
	assert.Equal(t, "", FindUTR("UTR 12345678901234567"))
}

func TestFindPayeeVPA(t *testing.T) {
	assert.Equal(t, "merchant@upi", FindPayeeVPA("random text merchant@upi end"))
	assert.Equal(t, "ramesh@ybl", FindPayeeVPA("support@phonepe.com\nPaid to\nRamesh Kumar\nramesh@ybl"))
	assert.Equal(t, "ramesh.kumar@okhdfcbank", FindPayeeVPA("To RAMESH KUMAR\nRAMESH.KUMAR@OKHDFCBANK"))
	assert.Equal(t, "", FindPayeeVPA("Paid to Ramesh"))
}

func TestFindPayeeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"paid to", "Paid to Ramesh Kumar", "Ramesh Kumar"},
		{"to colon", "To: Anita Sharma", "Anita Sharma"},
		{"paid to colon", "Paid to: Anita Sharma", "Anita Sharma"},
		{"label above name", "Paid to\nSharma General Store\nsharmastore@ybl", "Sharma General Store"},
		{"header line", "Google Pay\nTo RAMESH KUMAR\nramesh@okhdfcbank", "RAMESH KUMAR"},
		{"runs into handle", "Paid to Ramesh Kumar ramesh@ybl", "Ramesh Kumar"},
		{"phrase beats header", "To RAMESH\nx\nTo: Anita Sharma", "Anita Sharma"},
		{"header only", "a\nb\nc\nd\ne\nf\nTo RAMESH KUMAR", ""},
		{"lower case", "paid to merchant", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FindPayeeName(tc.in))
		})
	}
}

func TestFindPayerName(t *testing.T) {
	assert.Equal(t, "ANITA SHARMA", FindPayerName("From: ANITA SHARMA (State Bank of India)"))
	assert.Equal(t, "Rajesh Singh", FindPayerName("Debited from HDFC Bank\nFrom Rajesh Singh"))
	assert.Equal(t, "", FindPayerName("Debited from HDFC Bank"))
	assert.Equal(t, "", FindPayerName(""))
}

func TestFindStatus(t *testing.T) {
	cases := map[string]dto.TxnStatus{
		"Payment Success":        dto.StatusSuccessful,
		"Transaction Successful": dto.StatusSuccessful,
		"SUCCESSFUL":             dto.StatusSuccessful,
		"Completed":              dto.StatusCompleted,
		"Payment FAILED":         dto.StatusFailed,
		"pending":                dto.StatusPending,
		"Declined by bank":       dto.StatusDeclined,
		"Paid":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FindStatus(in), in)
	}
}

func TestCaptureNameCapsLength(t *testing.T) {
	long := "Paid to A"
	for i := 0; i < 300; i++ {
		long += "b"
	}
	assert.Len(t, []rune(FindPayeeName(long)), maxNameLen)
}
