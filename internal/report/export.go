package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kjstillabower/solar-power-service/internal/models"
)

// ExportFilename is the suggested download name for WriteCSV output.
const ExportFilename = "prediction.csv"

// ExportHeader is the CSV header row.
var ExportHeader = []string{"Feature", "Input Value", "Predicted Power (Joules)"}

// WriteCSV writes the header and one row per input field, repeating the prediction in
// every row.
func WriteCSV(w io.Writer, obs models.Observation, p float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	pred := formatNumber(p)
	for i, f := range models.Fields {
		if err := cw.Write([]string{f.Label, formatNumber(obs[i]), pred}); err != nil {
			return fmt.Errorf("write csv row %s: %w", f.Key, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
