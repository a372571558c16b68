package apiapp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/carambo/turnero/internal/schedule"
)

func (s *server) configHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":         schedule.DayNames,
		"turnos":       schedule.Turnos,
		"boards":       []string{schedule.BoardCajeros, schedule.BoardEncargados},
		"cajas":        schedule.BaseCajas,
		"managerCajas": schedule.ManagerCajas,
		"specialCajas": schedule.SpecialCajaLabels,
		"statuses":     schedule.Statuses,
		"week":         s.store.Week(),
	})
}

func (s *server) weekHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"week": s.store.Week()})
	case http.MethodPut:
		var req setWeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.store.SetWeek(req.Week); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"week": s.store.Week()})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// scheduleHandler dispatches everything under /api/schedule/:
//
//	POST   clear                      wipe both boards
//	GET    {board}                    full board state
//	POST   {board}/clear              wipe one board
//	POST   {board}/rows               add a dynamic caja row
//	DELETE {board}/rows/{caja}        remove a dynamic caja row
//	GET    {board}/{day}              one day
//	POST   {board}/{day}/assign       put a person into a slot
//	POST   {board}/{day}/unassign     clear a slot
//	POST   {board}/{day}/times        set entrada/salida on a slot
//	POST   {board}/{day}/status       add franco/licencia/vacaciones
//	DELETE {board}/{day}/status       remove a status
//	GET    {board}/{day}/resolve      resolve one person's cell (?name=)
func (s *server) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/schedule/"), "/")
	parts := strings.Split(rest, "/")

	if len(parts) == 1 && parts[0] == "clear" {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.store.ClearAll(); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
		return
	}

	board := parts[0]
	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		state, err := s.store.BoardState(board)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	case 2:
		switch parts[1] {
		case "clear":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			if err := s.store.ClearBoard(board); err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
		case "rows":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			caja, err := s.store.AddRow(board)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]int{"caja": caja})
		default:
			s.dayHandler(w, r, board, parts[1], "")
		}
	case 3:
		if parts[1] == "rows" {
			if r.Method != http.MethodDelete {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			caja, err := strconv.Atoi(parts[2])
			if err != nil {
				writeError(w, http.StatusBadRequest, "caja must be a number")
				return
			}
			if err := s.store.RemoveRow(board, caja); err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
			return
		}
		s.dayHandler(w, r, board, parts[1], parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *server) dayHandler(w http.ResponseWriter, r *http.Request, board, dayPart, action string) {
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be a number between 0 and 6")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		state, err := s.store.DayState(board, day)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	case "assign":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.store.Assign(board, day, req.Caja, req.Turno, req.Name); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "assigned"})
	case "unassign":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req unassignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.store.Unassign(board, day, req.Caja, req.Turno); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "unassigned"})
	case "times":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req setTimesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.store.SetTimes(board, day, req.Caja, req.Turno, req.Entrada, req.Salida); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	case "status":
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if r.Method == http.MethodPost {
			err = s.store.AddStatus(board, day, schedule.Status(req.Status), req.Name)
		} else {
			err = s.store.RemoveStatus(board, day, schedule.Status(req.Status), req.Name)
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	case "resolve":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, http.StatusBadRequest, "name query parameter is required")
			return
		}
		resolution, err := s.store.Resolve(board, day, name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resolution)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *server) codesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Codes())
	case http.MethodPost:
		var req upsertCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.store.UpsertCode(req.Signature, req.Codigo); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "saved"})
	case http.MethodDelete:
		// Signatures contain "+" and ":" so they travel as a query value.
		signature := r.URL.Query().Get("signature")
		if signature == "" {
			writeError(w, http.StatusBadRequest, "signature query parameter is required")
			return
		}
		if err := s.store.RemoveCode(signature); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) personnelHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Personnel())
	case http.MethodPost:
		var req personRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		person, err := s.store.AddPerson(schedule.Person{
			Name:         req.Name,
			Active:       active,
			IsManager:    req.IsManager,
			ContractType: req.ContractType,
			WeeklyHours:  req.WeeklyHours,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, person)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) personnelItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/personnel/"), "/")
	parts := strings.Split(rest, "/")

	if len(parts) == 1 && parts[0] == "import" {
		s.importPersonnel(w, r)
		return
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "person id must be a number")
		return
	}

	switch len(parts) {
	case 1:
		switch r.Method {
		case http.MethodPut:
			var req personRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			active := true
			if req.Active != nil {
				active = *req.Active
			}
			person, err := s.store.UpdatePerson(schedule.Person{
				ID:           id,
				Name:         req.Name,
				Active:       active,
				IsManager:    req.IsManager,
				ContractType: req.ContractType,
				WeeklyHours:  req.WeeklyHours,
			})
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, person)
		case http.MethodDelete:
			if err := s.store.RemovePerson(id); err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case 2:
		if parts[1] != "photo" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.getPersonPhoto(w, r, id)
		case http.MethodPut:
			s.uploadPersonPhoto(w, r, id)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *server) weekReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.store.WeekReportData())
}
