package client

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/utils"
)

// DecodeUPIQR looks for a UPI intent QR code in the image. Payment
// screenshots rarely carry one; a missing or non-UPI code is an error the
// caller is expected to ignore.
func DecodeUPIQR(data []byte) (*dto.UPIIntent, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}

	return utils.ParseUPIIntent(result.GetText())
}
