package apiapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/carambo/turnero/internal/schedule"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// xz stream magic, used to sniff compressed restore uploads.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

func (s *server) exportPlanilla(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := s.store.WeekReportData()
	codes := s.store.Codes()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const horariosSheet = "Horarios"
	if err := f.SetSheetName(f.GetSheetName(0), horariosSheet); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	header := append([]any{"Empleado", "Contrato", "Horas"}, anySlice(schedule.DayNames)...)
	header = append(header, "Total", "Extras")
	if err := f.SetSheetRow(horariosSheet, "A1", &header); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetCellStyle(horariosSheet, "A1", lastCol+"1", headerStyle)
	_ = f.SetColWidth(horariosSheet, "A", "A", 26)
	_ = f.SetColWidth(horariosSheet, "B", lastCol, 12)

	for i, row := range report.Rows {
		values := []any{row.Person.Name, row.Person.ContractType, row.Person.WeeklyHours}
		for _, day := range row.Days {
			values = append(values, day.Code)
		}
		values = append(values, row.TotalHours, row.ExtraHours)
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(horariosSheet, cell, &values); err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
	}

	const codesSheet = "Códigos"
	if _, err := f.NewSheet(codesSheet); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	legendHeader := []any{"Horario", "Código", "Horas"}
	if err := f.SetSheetRow(codesSheet, "A1", &legendHeader); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	_ = f.SetCellStyle(codesSheet, "A1", "C1", headerStyle)
	_ = f.SetColWidth(codesSheet, "A", "A", 26)
	for i, code := range codes {
		values := []any{code.Display, code.Codigo, code.Hours}
		if err := f.SetSheetRow(codesSheet, "A"+strconv.Itoa(i+2), &values); err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
	}

	filename := "planilla_" + report.Week + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("write planilla export: %v", err)
	}
}

func (s *server) exportCodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	codes := s.store.Codes()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := []any{"Horario", "Clave", "Código", "Horas"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	_ = f.SetColWidth(sheet, "A", "B", 26)
	for i, code := range codes {
		values := []any{code.Display, code.Signature, code.Codigo, code.Hours}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &values); err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="codigos.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Printf("write codes export: %v", err)
	}
}

// backupHandler streams the full snapshot, plain JSON by default or
// xz-compressed with ?format=xz.
func (s *server) backupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.store.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="turnero_backup.json"`)
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(&snap); err != nil {
			log.Printf("write backup: %v", err)
		}
	case "xz":
		w.Header().Set("Content-Type", "application/x-xz")
		w.Header().Set("Content-Disposition", `attachment; filename="turnero_backup.json.xz"`)
		compressor, err := xz.NewWriter(w)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "backup failed")
			return
		}
		if err := json.NewEncoder(compressor).Encode(&snap); err != nil {
			log.Printf("write backup: %v", err)
			return
		}
		if err := compressor.Close(); err != nil {
			log.Printf("finish backup: %v", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json or xz")
	}
}

// restoreHandler replaces the snapshot from an uploaded backup, accepting
// either plain JSON or the xz-compressed variant.
func (s *server) restoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read upload")
		return
	}

	var reader io.Reader = bytes.NewReader(body)
	if bytes.HasPrefix(body, xzMagic) {
		decompressor, err := xz.NewReader(bytes.NewReader(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid xz stream")
			return
		}
		reader = decompressor
	}

	var snap schedule.Snapshot
	if err := json.NewDecoder(reader).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup file")
		return
	}
	if err := s.store.Restore(snap); err != nil {
		writeError(w, http.StatusInternalServerError, "restore failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "restored"})
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
