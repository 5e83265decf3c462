package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Nom", "Prenom", "Annee", "Acquis", "Report",
	"Fractionnement", "Compensateur", "Pris", "Restant",
}

func rowValues(r BalanceRow) []string {
	return []string{
		r.LastName,
		r.FirstName,
		strconv.Itoa(r.Year),
		formatDays(r.Acquired),
		formatDays(r.CarriedOver),
		formatDays(r.FractionnementBonus),
		formatDays(r.Compensatory),
		formatDays(r.Taken),
		formatDays(r.Remaining),
	}
}

func formatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV streams the balance report with a semicolon separator, the
// convention French spreadsheet tools expect.
func WriteCSV(w io.Writer, rows []BalanceRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(rowValues(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the report as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []BalanceRow, year int) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Soldes %d", year)
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for i, r := range rows {
		values := rowValues(r)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// WritePDF renders the report as a landscape table.
func WritePDF(w io.Writer, rows []BalanceRow, year int) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Soldes de conges %d", year))
	pdf.Ln(12)

	widths := []float64{45, 40, 20, 25, 25, 32, 32, 25, 25}

	pdf.SetFont("Helvetica", "B", 9)
	for i, title := range exportHeader {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		values := rowValues(r)
		for i, value := range values {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
