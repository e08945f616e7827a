package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

const catalogSheet = "Profiles"

// Column headers of the price list. Both the Hebrew labels written by
// GenerateProfileCatalog and their English forms are accepted on import.
var catalogHeaders = map[string]string{
	"שם פרופיל":  "name",
	"פרופיל":     "name",
	"name":       "name",
	"מחיר למ\"ר": "unit_price",
	"מחיר":       "unit_price",
	"unit price": "unit_price",
	"unit_price": "unit_price",
}

// CatalogRowError is a rejected row of an uploaded price list. Row is the
// spreadsheet row number, header included.
type CatalogRowError struct {
	Row     int
	Message string
}

// CatalogImportResult summarizes a price list upload.
type CatalogImportResult struct {
	Created int
	Updated int
	Errors  []CatalogRowError
}

// GenerateProfileCatalog writes the profile catalog as a one-sheet workbook.
// The same layout is read back by ImportProfileCatalog.
func GenerateProfileCatalog(profiles []Profile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), catalogSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	rtl := true
	if err := f.SetSheetView(catalogSheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("set sheet view: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders(), CustomNumFmt: &moneyNumFmt})
	if err != nil {
		return nil, fmt.Errorf("create price style: %w", err)
	}

	f.SetCellValue(catalogSheet, "A1", "שם פרופיל")
	f.SetCellValue(catalogSheet, "B1", "מחיר למ\"ר")
	f.SetCellStyle(catalogSheet, "A1", "B1", headerStyle)
	f.SetColWidth(catalogSheet, "A", "A", 30)
	f.SetColWidth(catalogSheet, "B", "B", 16)

	for i, p := range profiles {
		row := i + 2
		f.SetCellValue(catalogSheet, fmt.Sprintf("A%d", row), sanitizeExcelCell(p.Name))
		f.SetCellValue(catalogSheet, fmt.Sprintf("B%d", row), roundMoney(p.UnitPrice))
		f.SetCellStyle(catalogSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), priceStyle)
	}

	f.SetPanes(catalogSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write profile catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportProfileCatalog reads a .csv or .xlsx price list and upserts its
// profiles by name. Bad rows are reported and skipped; the rest are written
// in one transaction.
func ImportProfileCatalog(app core.App, file io.Reader, fileName string) (CatalogImportResult, error) {
	var headers []string
	var rows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, rows, err = parseCatalogCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, rows, err = parseCatalogExcel(file)
	default:
		return CatalogImportResult{}, &ValidationError{Field: "file", Message: "יש להעלות קובץ ‎.csv או ‎.xlsx"}
	}
	if err != nil {
		return CatalogImportResult{}, err
	}

	nameCol, priceCol := -1, -1
	for i, key := range mapCatalogHeaders(headers) {
		switch key {
		case "name":
			nameCol = i
		case "unit_price":
			priceCol = i
		}
	}
	if nameCol < 0 || priceCol < 0 {
		return CatalogImportResult{}, &ValidationError{Field: "file", Message: "חסרות עמודות שם פרופיל ומחיר למ\"ר"}
	}

	var result CatalogImportResult
	err = app.RunInTransaction(func(txApp core.App) error {
		for i, row := range rows {
			rowNum := i + 2
			name := strings.TrimSpace(cellAt(row, nameCol))
			price := RawText(cellAt(row, priceCol))
			if name == "" && strings.TrimSpace(string(price)) == "" {
				continue
			}

			id := ""
			if existing, err := txApp.FindFirstRecordByData("profiles", "name", name); err == nil {
				id = existing.Id
			}
			if _, err := SaveProfile(txApp, id, name, price); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					result.Errors = append(result.Errors, CatalogRowError{Row: rowNum, Message: verr.Message})
					continue
				}
				return err
			}
			if id == "" {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return CatalogImportResult{}, fmt.Errorf("import profile catalog: %w", err)
	}

	log.Printf("profile_catalog: imported %s: %d created, %d updated, %d rejected",
		fileName, result.Created, result.Updated, len(result.Errors))
	return result, nil
}

func parseCatalogCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, nil, &ValidationError{Field: "file", Message: "הקובץ ריק"}
	}
	// Excel writes a UTF-8 BOM in front of CSV exports
	allRows[0][0] = strings.TrimPrefix(allRows[0][0], "\ufeff")
	return allRows[0], allRows[1:], nil
}

func parseCatalogExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, &ValidationError{Field: "file", Message: "לא ניתן לפתוח את קובץ האקסל"}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, &ValidationError{Field: "file", Message: "הקובץ ריק"}
	}
	return rows[0], rows[1:], nil
}

// mapCatalogHeaders returns the field key of each column, or "" for
// columns it does not recognize.
func mapCatalogHeaders(headers []string) []string {
	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		mapped[i] = catalogHeaders[norm]
	}
	return mapped
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// CatalogFilename is "profiles_<YYYY-MM-DD>.xlsx".
func CatalogFilename(date time.Time) string {
	return fmt.Sprintf("profiles_%s.xlsx", date.Format("2006-01-02"))
}
