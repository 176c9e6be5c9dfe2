package report

import (
	"bytes"
	"testing"
	"time"

	"affiliate-market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteClicksRoundTrips(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &domain.ClickReport{
		Summary: domain.ClickSummary{TotalClicks: 7, TotalProducts: 2, AverageClicks: 3.5},
		Products: []domain.ClickReportRow{
			{ProductID: 2, Title: "Fone", StoreName: "Loja", Clicks: 5, CreatedAt: created},
			{ProductID: 1, Title: "Mouse", StoreName: "Loja", Clicks: 2, CreatedAt: created},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteClicks(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ClicksSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ClicksSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, clickHeaders, rows[0])
	assert.Equal(t, []string{"2", "Fone", "Loja", "5", "2024-03-01 12:00:00"}, rows[1])

	total, err := f.GetCellValue(SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "7", total)

	avg, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "3.5", avg)
}

func TestWriteClicksEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClicks(&buf, &domain.ClickReport{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ClicksSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
