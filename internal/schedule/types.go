package schedule

import "sort"

// Board names. Cashiers and managers keep separate weekly grids but share
// the personnel roster and the code table.
const (
	BoardCajeros    = "cajeros"
	BoardEncargados = "encargados"
)

// Turno keys inside a caja row, in display order.
const (
	Turno1 = "turno1"
	Turno2 = "turno2"
	Turno3 = "turno3"
)

var Turnos = []string{Turno1, Turno2, Turno3}

// DaysPerWeek grid columns, 0 = Lunes.
const DaysPerWeek = 7

var DayNames = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// BaseCajas is the fixed number of caja rows on the cashier board. Rows
// beyond the checkout lanes carry fixed labels.
const BaseCajas = 32

var SpecialCajaLabels = map[int]string{
	26: "Perfumería",
	29: "Aux 1",
	30: "Aux 2",
	31: "SAC",
	32: "Teso",
}

// ManagerCajas is the row count on the manager board.
const ManagerCajas = 6

// Status is a day-level special marker. A person carrying one of these on a
// given day cannot also hold a grid slot that day.
type Status string

const (
	StatusFranco     Status = "franco"
	StatusLicencia   Status = "licencia"
	StatusVacaciones Status = "vacaciones"
)

var Statuses = []Status{StatusFranco, StatusLicencia, StatusVacaciones}

func ValidStatus(s Status) bool {
	switch s {
	case StatusFranco, StatusLicencia, StatusVacaciones:
		return true
	}
	return false
}

// ShiftSlot is one turno cell: who works it and between which clock times.
// Times are zero-padded HH:MM strings, empty while unset.
type ShiftSlot struct {
	Name    string `json:"name"`
	Entrada string `json:"entrada"`
	Salida  string `json:"salida"`
}

func (s ShiftSlot) Timed() bool {
	return s.Entrada != "" && s.Salida != ""
}

func (s ShiftSlot) IsZero() bool {
	return s.Name == "" && s.Entrada == "" && s.Salida == ""
}

// DaySchedule holds one day of a board: the caja grid plus the three status
// buckets. Caja and turno keys follow the stored wire format.
type DaySchedule struct {
	Cajas      map[int]map[string]ShiftSlot `json:"cajas"`
	Francos    []string                     `json:"francos"`
	Licencias  []string                     `json:"licencias"`
	Vacaciones []string                     `json:"vacaciones"`
}

func NewDaySchedule() *DaySchedule {
	return &DaySchedule{
		Cajas:      map[int]map[string]ShiftSlot{},
		Francos:    []string{},
		Licencias:  []string{},
		Vacaciones: []string{},
	}
}

func (d *DaySchedule) normalize() {
	if d.Cajas == nil {
		d.Cajas = map[int]map[string]ShiftSlot{}
	}
	if d.Francos == nil {
		d.Francos = []string{}
	}
	if d.Licencias == nil {
		d.Licencias = []string{}
	}
	if d.Vacaciones == nil {
		d.Vacaciones = []string{}
	}
}

func (d *DaySchedule) Slot(caja int, turno string) ShiftSlot {
	if row, ok := d.Cajas[caja]; ok {
		return row[turno]
	}
	return ShiftSlot{}
}

func (d *DaySchedule) setSlot(caja int, turno string, slot ShiftSlot) {
	if slot.IsZero() {
		if row, ok := d.Cajas[caja]; ok {
			delete(row, turno)
			if len(row) == 0 {
				delete(d.Cajas, caja)
			}
		}
		return
	}
	row, ok := d.Cajas[caja]
	if !ok {
		row = map[string]ShiftSlot{}
		d.Cajas[caja] = row
	}
	row[turno] = slot
}

func (d *DaySchedule) statusBucket(status Status) *[]string {
	switch status {
	case StatusFranco:
		return &d.Francos
	case StatusLicencia:
		return &d.Licencias
	case StatusVacaciones:
		return &d.Vacaciones
	}
	return nil
}

// StatusOf reports which status bucket, if any, holds the given person.
func (d *DaySchedule) StatusOf(name string) (Status, bool) {
	for _, status := range Statuses {
		for _, entry := range *d.statusBucket(status) {
			if entry == name {
				return status, true
			}
		}
	}
	return "", false
}

// InGrid reports whether the person holds any caja slot this day.
func (d *DaySchedule) InGrid(name string) bool {
	for _, row := range d.Cajas {
		for _, slot := range row {
			if slot.Name == name {
				return true
			}
		}
	}
	return false
}

// SlotsOf returns the person's slots for the day keyed by caja/turno.
func (d *DaySchedule) SlotsOf(name string) map[SlotKey]ShiftSlot {
	out := map[SlotKey]ShiftSlot{}
	for caja, row := range d.Cajas {
		for turno, slot := range row {
			if slot.Name == name {
				out[SlotKey{Caja: caja, Turno: turno}] = slot
			}
		}
	}
	return out
}

// Board is a full week of day schedules plus any extra caja rows added at
// runtime beyond the fixed layout.
type Board struct {
	Days        map[int]*DaySchedule `json:"scheduleData"`
	DynamicRows []int                `json:"dynamicRows"`
}

func NewBoard() *Board {
	b := &Board{
		Days:        map[int]*DaySchedule{},
		DynamicRows: []int{},
	}
	for day := 0; day < DaysPerWeek; day++ {
		b.Days[day] = NewDaySchedule()
	}
	return b
}

func (b *Board) normalize() {
	if b.Days == nil {
		b.Days = map[int]*DaySchedule{}
	}
	for day := 0; day < DaysPerWeek; day++ {
		if b.Days[day] == nil {
			b.Days[day] = NewDaySchedule()
		}
		b.Days[day].normalize()
	}
	if b.DynamicRows == nil {
		b.DynamicRows = []int{}
	}
	sort.Ints(b.DynamicRows)
}

// Person is one roster entry. Grid and status entries reference people by
// name, so renames must migrate stored assignments.
type Person struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Active       bool    `json:"active"`
	IsManager    bool    `json:"isManager"`
	ContractType string  `json:"contractType"`
	WeeklyHours  float64 `json:"weeklyHours"`
}

type Metadata struct {
	Total       int    `json:"total"`
	LastUpdated string `json:"lastUpdated"`
	Version     string `json:"version"`
}

// Snapshot is the full persisted state: both boards, the code table, the
// roster, and bookkeeping metadata, saved as a single versioned document.
type Snapshot struct {
	Version    string    `json:"version"`
	LastSaved  string    `json:"lastSaved"`
	Week       string    `json:"week"`
	Cajeros    *Board    `json:"cajeros"`
	Encargados *Board    `json:"encargados"`
	Codes      CodeTable `json:"codes"`
	Personnel  []Person  `json:"personnel"`
	Metadata   Metadata  `json:"metadata"`
}

func (s *Snapshot) normalize() {
	if s.Cajeros == nil {
		s.Cajeros = NewBoard()
	}
	if s.Encargados == nil {
		s.Encargados = NewBoard()
	}
	s.Cajeros.normalize()
	s.Encargados.normalize()
	if s.Codes == nil {
		s.Codes = CodeTable{}
	}
	if s.Personnel == nil {
		s.Personnel = []Person{}
	}
}
