package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// WriteCSV writes a header row followed by one row per payment.
func WriteCSV(w io.Writer, payments []dto.Payment) error {
	rows := make([]*CSVRow, 0, len(payments))
	for _, p := range payments {
		row := ToCSVRow(p)
		rows = append(rows, &row)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	return nil
}
