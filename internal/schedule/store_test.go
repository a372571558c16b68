package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "turnero_data.json"), "")
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, p := range []Person{
		{Name: "Ana", Active: true, ContractType: "Full-time", WeeklyHours: 36},
		{Name: "Bruno", Active: true, ContractType: "Part-time", WeeklyHours: 20},
		{Name: "Carla", Active: true, IsManager: true, ContractType: "Full-time", WeeklyHours: 44},
		{Name: "Diego", Active: false, ContractType: "Part-time", WeeklyHours: 20},
	} {
		if _, err := s.AddPerson(p); err != nil {
			t.Fatalf("add %s: %v", p.Name, err)
		}
	}
	return s
}

func TestStoreAssignAndPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "turnero_data.json")

	s := NewStore(path, "")
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.AddPerson(Person{Name: "Ana", Active: true, WeeklyHours: 36}); err != nil {
		t.Fatalf("add person: %v", err)
	}
	if err := s.Assign(BoardCajeros, 0, 3, Turno1, "Ana"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.SetTimes(BoardCajeros, 0, 3, Turno1, "08:00", "16:00"); err != nil {
		t.Fatalf("set times: %v", err)
	}

	reloaded := NewStore(path, "")
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	d, err := reloaded.DayState(BoardCajeros, 0)
	if err != nil {
		t.Fatalf("day state: %v", err)
	}
	slot := d.Slot(3, Turno1)
	if slot.Name != "Ana" || slot.Entrada != "08:00" || slot.Salida != "16:00" {
		t.Fatalf("persisted slot = %+v", slot)
	}
}

func TestStoreAssignValidation(t *testing.T) {
	s := newTestStore(t)

	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Ana"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Bruno"); err == nil {
		t.Fatalf("occupied slot must reject a second person")
	}
	if err := s.Assign(BoardCajeros, 0, 2, Turno1, "Carla"); err == nil {
		t.Fatalf("managers must not land on the cashier board")
	}
	if err := s.Assign(BoardEncargados, 0, 1, Turno1, "Carla"); err != nil {
		t.Fatalf("manager on encargados: %v", err)
	}
	if err := s.Assign(BoardCajeros, 0, 2, Turno1, "Diego"); err == nil {
		t.Fatalf("inactive people must not be assignable")
	}
	if err := s.Assign(BoardCajeros, 0, 2, Turno1, "Nadie"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown person: err = %v", err)
	}
	if err := s.Assign(BoardCajeros, 0, 99, Turno1, "Ana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("out-of-range caja: err = %v", err)
	}
}

func TestStoreSetTimesEnforcesSplitShiftRule(t *testing.T) {
	s := newTestStore(t)

	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Ana"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.SetTimes(BoardCajeros, 0, 1, Turno1, "09:00", "13:00"); err != nil {
		t.Fatalf("set times: %v", err)
	}
	if err := s.Assign(BoardCajeros, 0, 2, Turno2, "Ana"); err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if err := s.SetTimes(BoardCajeros, 0, 2, Turno2, "12:00", "16:00"); err == nil {
		t.Fatalf("overlapping split shift must be rejected")
	}
	if err := s.SetTimes(BoardCajeros, 0, 2, Turno2, "13:00", "17:00"); err != nil {
		t.Fatalf("touching boundary should be allowed: %v", err)
	}
	if err := s.SetTimes(BoardCajeros, 0, 2, Turno2, "25:00", "26:00"); err == nil {
		t.Fatalf("malformed clock must be rejected")
	}
}

func TestStoreStatusBucketsAreExclusive(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddStatus(BoardCajeros, 2, StatusFranco, "Ana"); err != nil {
		t.Fatalf("add status: %v", err)
	}
	if err := s.AddStatus(BoardCajeros, 2, StatusFranco, "Ana"); err != nil {
		t.Fatalf("re-adding the same status must be a no-op: %v", err)
	}
	if err := s.AddStatus(BoardCajeros, 2, StatusLicencia, "Ana"); err == nil {
		t.Fatalf("a second status the same day must be rejected")
	}
	if err := s.Assign(BoardCajeros, 2, 1, Turno1, "Ana"); err == nil {
		t.Fatalf("a grid slot on a franco day must be rejected")
	}

	if err := s.Assign(BoardCajeros, 3, 1, Turno1, "Ana"); err != nil {
		t.Fatalf("assign on another day: %v", err)
	}
	if err := s.AddStatus(BoardCajeros, 3, StatusVacaciones, "Ana"); err == nil {
		t.Fatalf("a status on an assigned day must be rejected")
	}

	if err := s.RemoveStatus(BoardCajeros, 2, StatusFranco, "Ana"); err != nil {
		t.Fatalf("remove status: %v", err)
	}
	if err := s.RemoveStatus(BoardCajeros, 2, StatusFranco, "Ana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removing an absent status: err = %v", err)
	}
}

func TestStoreRenameMigratesAssignments(t *testing.T) {
	s := newTestStore(t)

	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Ana"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.AddStatus(BoardCajeros, 4, StatusFranco, "Ana"); err != nil {
		t.Fatalf("add status: %v", err)
	}

	people := s.Personnel()
	var ana Person
	for _, p := range people {
		if p.Name == "Ana" {
			ana = p
		}
	}
	ana.Name = "Ana María"
	if _, err := s.UpdatePerson(ana); err != nil {
		t.Fatalf("update: %v", err)
	}

	d, _ := s.DayState(BoardCajeros, 0)
	if slot := d.Slot(1, Turno1); slot.Name != "Ana María" {
		t.Fatalf("grid slot not migrated: %+v", slot)
	}
	d, _ = s.DayState(BoardCajeros, 4)
	if status, ok := d.StatusOf("Ana María"); !ok || status != StatusFranco {
		t.Fatalf("status bucket not migrated")
	}
	if _, ok := d.StatusOf("Ana"); ok {
		t.Fatalf("old name still present in status bucket")
	}
}

func TestStoreRemovePersonScrubsBoards(t *testing.T) {
	s := newTestStore(t)

	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Bruno"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	var bruno Person
	for _, p := range s.Personnel() {
		if p.Name == "Bruno" {
			bruno = p
		}
	}
	if err := s.RemovePerson(bruno.ID); err != nil {
		t.Fatalf("remove person: %v", err)
	}
	d, _ := s.DayState(BoardCajeros, 0)
	if !d.Slot(1, Turno1).IsZero() {
		t.Fatalf("removed person still holds a slot")
	}
}

func TestStoreDynamicRows(t *testing.T) {
	s := newTestStore(t)

	caja, err := s.AddRow(BoardCajeros)
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if caja != BaseCajas+1 {
		t.Fatalf("first dynamic row = %d, want %d", caja, BaseCajas+1)
	}
	if err := s.Assign(BoardCajeros, 0, caja, Turno1, "Ana"); err != nil {
		t.Fatalf("assign on dynamic row: %v", err)
	}
	if err := s.RemoveRow(BoardCajeros, caja); err != nil {
		t.Fatalf("remove row: %v", err)
	}
	if err := s.RemoveRow(BoardCajeros, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fixed rows must not be removable: err = %v", err)
	}
	d, _ := s.DayState(BoardCajeros, 0)
	if !d.Slot(caja, Turno1).IsZero() {
		t.Fatalf("slots on a removed row must be dropped")
	}
}

func TestStoreSetWeek(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetWeek("2026-08-31"); err != nil {
		t.Fatalf("set week: %v", err)
	}
	if got := s.Week(); got != "2026-08-31" {
		t.Fatalf("week = %q", got)
	}
	if err := s.SetWeek("2026-09-01"); err == nil {
		t.Fatalf("non-Monday week must be rejected")
	}
	if err := s.SetWeek("soon"); err == nil {
		t.Fatalf("malformed week must be rejected")
	}
}

func TestStoreSeedsFromCrewFiles(t *testing.T) {
	dir := t.TempDir()
	crewDir := filepath.Join(dir, "crew")
	if err := os.MkdirAll(crewDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	codes := `{"08:00-16:00":{"codigo":"00125"}}`
	personnel := `{"personnel":[{"id":1,"name":"Ana","active":true,"isManager":false,"contractType":"Full-time","weeklyHours":36}],"metadata":{"total":1,"lastUpdated":"2026-01-05","version":"2.1"}}`
	if err := os.WriteFile(filepath.Join(crewDir, "schedule_codes.json"), []byte(codes), 0o644); err != nil {
		t.Fatalf("write codes: %v", err)
	}
	if err := os.WriteFile(filepath.Join(crewDir, "personnel.json"), []byte(personnel), 0o644); err != nil {
		t.Fatalf("write personnel: %v", err)
	}

	s := NewStore(filepath.Join(dir, "turnero_data.json"), crewDir)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	rows := s.Codes()
	if len(rows) != 1 || rows[0].Codigo != "00125" {
		t.Fatalf("seeded codes = %+v", rows)
	}
	people := s.Personnel()
	if len(people) != 1 || people[0].Name != "Ana" {
		t.Fatalf("seeded personnel = %+v", people)
	}
}

func TestStoreSeedsSurviveMissingCrewDir(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "turnero_data.json"), filepath.Join(dir, "no-such-dir"))
	if err := s.Load(); err != nil {
		t.Fatalf("load with missing crew dir: %v", err)
	}
	if len(s.Codes()) != 0 || len(s.Personnel()) != 0 {
		t.Fatalf("missing crew dir must seed empty sections")
	}
}

func TestStoreExportRestore(t *testing.T) {
	s := newTestStore(t)
	if err := s.Assign(BoardCajeros, 0, 1, Turno1, "Ana"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	snap, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	// Mutating the export must not leak into the live snapshot.
	snap.Cajeros.Days[0].setSlot(1, Turno1, ShiftSlot{})
	d, _ := s.DayState(BoardCajeros, 0)
	if d.Slot(1, Turno1).Name != "Ana" {
		t.Fatalf("export is not a deep copy")
	}

	other := newTestStore(t)
	snap2, _ := s.Export()
	if err := other.Restore(snap2); err != nil {
		t.Fatalf("restore: %v", err)
	}
	d, _ = other.DayState(BoardCajeros, 0)
	if d.Slot(1, Turno1).Name != "Ana" {
		t.Fatalf("restored slot missing")
	}
}

func TestStoreWeekReport(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertCode("08:00-16:00", "125"); err != nil {
		t.Fatalf("upsert code: %v", err)
	}
	for day := 0; day < 5; day++ {
		if err := s.Assign(BoardCajeros, day, 1, Turno1, "Ana"); err != nil {
			t.Fatalf("assign day %d: %v", day, err)
		}
		if err := s.SetTimes(BoardCajeros, day, 1, Turno1, "08:00", "16:00"); err != nil {
			t.Fatalf("set times day %d: %v", day, err)
		}
	}
	if err := s.AddStatus(BoardCajeros, 5, StatusFranco, "Ana"); err != nil {
		t.Fatalf("add status: %v", err)
	}

	report := s.WeekReportData()
	// Active people only: Ana, Bruno, then manager Carla.
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d", len(report.Rows))
	}
	ana := report.Rows[0]
	if ana.Person.Name != "Ana" {
		t.Fatalf("cashiers must sort by weekly hours first, got %q", ana.Person.Name)
	}
	if ana.TotalHours != 40 {
		t.Fatalf("total hours = %v", ana.TotalHours)
	}
	if ana.ExtraHours != 4 {
		t.Fatalf("extra hours = %v", ana.ExtraHours)
	}
	if ana.Days[0].Code != "00125" || ana.Days[5].Code != "F" || ana.Days[6].Code != "-" {
		t.Fatalf("resolved days = %+v", ana.Days)
	}
	last := report.Rows[len(report.Rows)-1]
	if !last.Person.IsManager {
		t.Fatalf("managers must come last, got %+v", last.Person)
	}
}
