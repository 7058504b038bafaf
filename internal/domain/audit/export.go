package audit

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderRoleChangesPDF lays out role change events as a one-table report.
func RenderRoleChangesPDF(events []Event, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Role change history")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(10)

	widths := []float64{42, 50, 38, 50, 32, 32, 30}
	headers := []string{"When", "Actor", "Action", "Employee", "From", "To", "Actor role"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(events) == 0 {
		pdf.CellFormat(sum(widths), 7, "No role changes recorded", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, evt := range events {
		row := []string{
			evt.CreatedAt.UTC().Format("2006-01-02 15:04"),
			evt.ActorID,
			evt.Action,
			evt.EntityID,
			evt.PreviousRole,
			evt.NewRole,
			evt.ActorRole,
		}
		for i, value := range row {
			pdf.CellFormat(widths[i], 6, truncate(value, 30), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
