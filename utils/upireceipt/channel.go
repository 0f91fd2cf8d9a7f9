package upireceipt

import (
	"strings"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// channelMarkers is checked in order; the first app whose marker appears wins.
var channelMarkers = []struct {
	channel dto.Channel
	markers []string
}{
	{dto.ChannelPhonePe, []string{"phonepe"}},
	{dto.ChannelGooglePay, []string{"google pay", "gpay", "g pay"}},
	{dto.ChannelPaytm, []string{"paytm"}},
}

// Classify guesses which payment app produced the screenshot. Text without
// any app marker is reported as a generic UPI receipt.
func Classify(text string) dto.Channel {
	t := strings.ToLower(text)
	for _, c := range channelMarkers {
		for _, m := range c.markers {
			if strings.Contains(t, m) {
				return c.channel
			}
		}
	}
	return dto.ChannelGenericUPI
}
