package schedule

// SlotKey addresses one cell of a day grid.
type SlotKey struct {
	Caja  int    `json:"caja"`
	Turno string `json:"turno"`
}

// CanAssign reports whether a person may hold the candidate slot alongside
// their other timed slots that day (the "horario cortado" rule). The slot at
// skip is ignored so a cell can be re-timed in place. Untimed slots cannot
// conflict, and shifts that merely touch at a boundary do not overlap.
//
// Zero-padded HH:MM strings compare correctly as plain strings, so no clock
// parsing is needed here.
func CanAssign(day *DaySchedule, name string, candidate ShiftSlot, skip SlotKey) bool {
	if !candidate.Timed() {
		return true
	}
	for key, slot := range day.SlotsOf(name) {
		if key == skip {
			continue
		}
		if !slot.Timed() {
			continue
		}
		if candidate.Salida <= slot.Entrada || candidate.Entrada >= slot.Salida {
			continue
		}
		return false
	}
	return true
}
