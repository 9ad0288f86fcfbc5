package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/tripwise/internal/types"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes one sheet per report section.
func WriteXLSX(w io.Writer, report *types.AdminReport) error {
	f := excelize.NewFile()
	defer f.Close()

	countSheets := []struct {
		name   string
		header string
		rows   []types.CountByKey
	}{
		{"Users", "Role", report.UsersByRole},
		{"Establishments", "State", report.EstablishmentsByState},
		{"Bookings", "Status", report.BookingsByStatus},
	}

	for i, sheet := range countSheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		if err := f.SetSheetRow(sheet.name, "A1", &[]interface{}{sheet.header, "Count"}); err != nil {
			return err
		}
		for r, row := range sheet.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet.name, cell, &[]interface{}{row.Key, row.Count}); err != nil {
				return err
			}
		}
	}

	popular := fmt.Sprintf("Top Islands %d", report.Year)
	if _, err := f.NewSheet(popular); err != nil {
		return fmt.Errorf("create sheet %s: %w", popular, err)
	}
	if err := f.SetSheetRow(popular, "A1", &[]interface{}{"Rank", "Island ID", "Island", "Visits"}); err != nil {
		return err
	}
	for r, p := range report.TopIslands {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(popular, cell, &[]interface{}{r + 1, p.IslandID, p.Name, p.AnnualVisits}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
