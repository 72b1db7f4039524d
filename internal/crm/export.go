package crm

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// ExportHeader is the literal column order of every lead export.
var ExportHeader = []string{"ID", "Nombre", "Email", "Teléfono", "Canal", "Estado", "Temperatura", "Valor", "Fecha"}

func exportRow(l *entity.Lead) []string {
	return []string{
		l.LeadID,
		l.SourceContact.Name,
		l.SourceContact.Email,
		l.SourceContact.Phone,
		l.SourceType(),
		l.Status(),
		l.Temperature(),
		strconv.Itoa(l.DealValue),
		l.CreatedAt.Format(time.RFC3339),
	}
}

// WriteCSV exports the leads with a header row. encoding/csv takes care of
// quoting embedded commas and doubling embedded quotes.
func WriteCSV(w io.Writer, leads []entity.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("error escribiendo cabecera CSV: %w", err)
	}
	for i := range leads {
		if err := cw.Write(exportRow(&leads[i])); err != nil {
			return fmt.Errorf("error escribiendo lead %s: %w", leads[i].LeadID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX is the spreadsheet twin of WriteCSV.
func WriteXLSX(w io.Writer, leads []entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("error creando hoja: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creando estilo: %w", err)
	}

	for i, h := range ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for r := range leads {
		for c, v := range exportRow(&leads[r]) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.Write(w)
}

// ExportFileName nombra el fichero de exportación con la fecha del día.
func ExportFileName(ext string, now time.Time) string {
	return fmt.Sprintf("leads_export_%s.%s", now.Format("2006-01-02"), ext)
}
