// Package export renders employee lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garnizeh/staffdir/pkg/models"
)

const (
	SheetName   = "Employees"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []string{"ID", "Name", "Email", "Mobile", "Designation", "Course", "Gender", "Image", "Created At", "Active"}

var widths = []float64{38, 24, 30, 16, 20, 14, 10, 40, 22, 8}

// WriteXLSX writes a workbook with one header row followed by one row per
// employee, in the given order.
func WriteXLSX(w io.Writer, employees []models.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open sheet stream: %w", err)
	}

	for i, width := range widths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = excelize.Cell{Value: h, StyleID: bold}
	}
	if err := sw.SetRow("A1", row); err != nil {
		return err
	}

	for i, e := range employees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []any{
			e.ID, e.Name, e.Email, e.Mobile, e.Designation, e.Course,
			string(e.Gender), e.ImageRef, e.CreatedAt.UTC().Format(time.RFC3339), e.Active,
		}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
