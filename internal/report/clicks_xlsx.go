package report

import (
	"fmt"
	"io"

	"affiliate-market/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	ClicksSheet  = "Clicks"
	SummarySheet = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var clickHeaders = []string{"Product ID", "Title", "Store", "Clicks", "Created At"}

// WriteClicks renders the click report as an XLSX workbook with a per-product
// sheet and a summary sheet.
func WriteClicks(w io.Writer, r *domain.ClickReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ClicksSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(ClicksSheet, "A1", &clickHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(ClicksSheet, "A1", "E1", header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range r.Products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.ProductID, p.Title, p.StoreName, p.Clicks, p.CreatedAt.UTC().Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow(ClicksSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ClicksSheet, "B", "C", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Total Clicks", r.Summary.TotalClicks},
		{"Total Products", r.Summary.TotalProducts},
		{"Average Clicks", r.Summary.AverageClicks},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A3", header); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
