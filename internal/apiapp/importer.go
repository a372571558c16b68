package apiapp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carambo/turnero/internal/schedule"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxImportSize = 16 << 20

// importPersonnel replaces the roster from an uploaded spreadsheet. Expected
// columns: nombre, encargado (si/no), contrato, horas. A header row is
// detected by its first cell and skipped. Any bad row aborts the import
// before anything is written.
func (s *server) importPersonnel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := readRowsFromSpreadsheet(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	people, err := parsePersonnelRows(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.ReplacePersonnel(people); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "imported",
		"imported": len(people),
	})
}

func parsePersonnelRows(rows [][]string) ([]schedule.Person, error) {
	var people []schedule.Person
	for i, row := range rows {
		name := cellValue(row, 0)
		if name == "" {
			continue
		}
		if i == 0 && strings.EqualFold(name, "nombre") {
			continue
		}

		person := schedule.Person{
			Name:         name,
			Active:       true,
			IsManager:    parseSpreadsheetBool(cellValue(row, 1)),
			ContractType: cellValue(row, 2),
		}
		if person.ContractType == "" {
			person.ContractType = "Full-time"
		}
		if hours := cellValue(row, 3); hours != "" {
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(hours, ",", "."), 64)
			if err != nil || parsed < 0 {
				return nil, fmt.Errorf("row %d: invalid weekly hours %q", i+1, hours)
			}
			person.WeeklyHours = parsed
		}
		people = append(people, person)
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("no personnel rows found")
	}
	return people, nil
}

func readRowsFromSpreadsheet(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(100000)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	}
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseSpreadsheetBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "si", "sí", "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
