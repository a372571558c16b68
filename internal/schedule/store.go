package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"
)

var ErrNotFound = errors.New("not found")

// Store owns the snapshot and is the only writer. Every mutating operation
// validates its inputs, applies the change, and persists before returning,
// so the on-disk snapshot always reflects the last acknowledged call.
type Store struct {
	mu      sync.RWMutex
	path    string
	crewDir string
	snap    Snapshot
}

func NewStore(path, crewDir string) *Store {
	return &Store{path: path, crewDir: crewDir}
}

func (s *Store) boardLocked(name string) (*Board, error) {
	switch name {
	case BoardCajeros:
		return s.snap.Cajeros, nil
	case BoardEncargados:
		return s.snap.Encargados, nil
	}
	return nil, fmt.Errorf("%w: board %q", ErrNotFound, name)
}

func (s *Store) dayLocked(board string, day int) (*DaySchedule, error) {
	b, err := s.boardLocked(board)
	if err != nil {
		return nil, err
	}
	if day < 0 || day >= DaysPerWeek {
		return nil, fmt.Errorf("%w: day %d", ErrNotFound, day)
	}
	return b.Days[day], nil
}

func validCaja(board string, b *Board, caja int) bool {
	base := BaseCajas
	if board == BoardEncargados {
		base = ManagerCajas
	}
	if caja >= 1 && caja <= base {
		return true
	}
	for _, extra := range b.DynamicRows {
		if extra == caja {
			return true
		}
	}
	return false
}

func validTurno(turno string) bool {
	switch turno {
	case Turno1, Turno2, Turno3:
		return true
	}
	return false
}

func (s *Store) personLocked(name string) (Person, bool) {
	for _, p := range s.snap.Personnel {
		if p.Name == name {
			return p, true
		}
	}
	return Person{}, false
}

// Week returns the Monday date of the planned week.
func (s *Store) Week() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Week
}

func (s *Store) SetWeek(week string) error {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(week))
	if err != nil {
		return errors.New("week must use YYYY-MM-DD")
	}
	if parsed.Weekday() != time.Monday {
		return errors.New("week must start on a Monday")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Week = parsed.Format("2006-01-02")
	return s.saveLocked()
}

// BoardState returns a deep copy of a board, safe for the caller to hold
// after the lock is released.
func (s *Store) BoardState(board string) (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.boardLocked(board)
	if err != nil {
		return nil, err
	}
	var out Board
	if err := deepcopy.Copy(&out, b); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DayState(board string, day int) (*DaySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.dayLocked(board, day)
	if err != nil {
		return nil, err
	}
	var out DaySchedule
	if err := deepcopy.Copy(&out, d); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assign puts a person into a caja slot. The slot must be free, the person
// must belong to the board's roster, and the day's status buckets and
// split-shift rule must allow it. Existing times on the cell are kept.
func (s *Store) Assign(board string, day, caja int, turno, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dayLocked(board, day)
	if err != nil {
		return err
	}
	b, _ := s.boardLocked(board)
	if !validCaja(board, b, caja) {
		return fmt.Errorf("%w: caja %d", ErrNotFound, caja)
	}
	if !validTurno(turno) {
		return fmt.Errorf("%w: turno %q", ErrNotFound, turno)
	}

	person, ok := s.personLocked(name)
	if !ok {
		return fmt.Errorf("%w: person %q", ErrNotFound, name)
	}
	if !person.Active {
		return fmt.Errorf("%s is inactive", name)
	}
	if person.IsManager != (board == BoardEncargados) {
		return fmt.Errorf("%s does not belong on the %s board", name, board)
	}

	slot := d.Slot(caja, turno)
	if slot.Name != "" && slot.Name != name {
		return fmt.Errorf("caja %d %s is already assigned to %s", caja, turno, slot.Name)
	}
	if status, ok := d.StatusOf(name); ok {
		return fmt.Errorf("%s already has %s that day", name, status)
	}

	candidate := slot
	candidate.Name = name
	if !CanAssign(d, name, candidate, SlotKey{Caja: caja, Turno: turno}) {
		return fmt.Errorf("%s already works overlapping hours that day", name)
	}

	d.setSlot(caja, turno, candidate)
	return s.saveLocked()
}

// Unassign clears a caja slot entirely, times included.
func (s *Store) Unassign(board string, day, caja int, turno string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dayLocked(board, day)
	if err != nil {
		return err
	}
	if d.Slot(caja, turno).IsZero() {
		return fmt.Errorf("%w: caja %d %s is empty", ErrNotFound, caja, turno)
	}
	d.setSlot(caja, turno, ShiftSlot{})
	return s.saveLocked()
}

// SetTimes updates the entrada/salida of an occupied slot. Either time may
// be empty while the shift is still being planned; once both are set the
// split-shift rule is enforced against the person's other slots.
func (s *Store) SetTimes(board string, day, caja int, turno, entrada, salida string) error {
	entrada = strings.TrimSpace(entrada)
	salida = strings.TrimSpace(salida)
	if entrada != "" && !ValidClock(entrada) {
		return fmt.Errorf("entrada %q must use HH:MM", entrada)
	}
	if salida != "" && !ValidClock(salida) {
		return fmt.Errorf("salida %q must use HH:MM", salida)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dayLocked(board, day)
	if err != nil {
		return err
	}
	slot := d.Slot(caja, turno)
	if slot.Name == "" {
		return fmt.Errorf("%w: caja %d %s has nobody assigned", ErrNotFound, caja, turno)
	}

	candidate := slot
	candidate.Entrada = entrada
	candidate.Salida = salida
	if !CanAssign(d, slot.Name, candidate, SlotKey{Caja: caja, Turno: turno}) {
		return fmt.Errorf("%s already works overlapping hours that day", slot.Name)
	}

	d.setSlot(caja, turno, candidate)
	return s.saveLocked()
}

// AddStatus marks a person franco/licencia/vacaciones for a day. The person
// must not hold a grid slot or another status that day. Re-adding the same
// status is a no-op.
func (s *Store) AddStatus(board string, day int, status Status, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	if !ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dayLocked(board, day)
	if err != nil {
		return err
	}
	person, ok := s.personLocked(name)
	if !ok {
		return fmt.Errorf("%w: person %q", ErrNotFound, name)
	}
	if person.IsManager != (board == BoardEncargados) {
		return fmt.Errorf("%s does not belong on the %s board", name, board)
	}
	if d.InGrid(name) {
		return fmt.Errorf("%s is already assigned to a caja that day", name)
	}
	if existing, ok := d.StatusOf(name); ok {
		if existing == status {
			return nil
		}
		return fmt.Errorf("%s already has %s that day", name, existing)
	}

	bucket := d.statusBucket(status)
	*bucket = append(*bucket, name)
	sort.Strings(*bucket)
	return s.saveLocked()
}

func (s *Store) RemoveStatus(board string, day int, status Status, name string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dayLocked(board, day)
	if err != nil {
		return err
	}
	bucket := d.statusBucket(status)
	for i, entry := range *bucket {
		if entry == name {
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			return s.saveLocked()
		}
	}
	return fmt.Errorf("%w: %s has no %s that day", ErrNotFound, name, status)
}

// AddRow appends an extra caja row after the board's fixed layout and
// returns its number.
func (s *Store) AddRow(board string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.boardLocked(board)
	if err != nil {
		return 0, err
	}
	next := BaseCajas
	if board == BoardEncargados {
		next = ManagerCajas
	}
	for _, extra := range b.DynamicRows {
		if extra > next {
			next = extra
		}
	}
	next++
	b.DynamicRows = append(b.DynamicRows, next)
	if err := s.saveLocked(); err != nil {
		return 0, err
	}
	return next, nil
}

// RemoveRow drops a dynamic row and any slots planned on it. Fixed rows
// cannot be removed.
func (s *Store) RemoveRow(board string, caja int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.boardLocked(board)
	if err != nil {
		return err
	}
	idx := -1
	for i, extra := range b.DynamicRows {
		if extra == caja {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: dynamic row %d", ErrNotFound, caja)
	}
	b.DynamicRows = append(b.DynamicRows[:idx], b.DynamicRows[idx+1:]...)
	for _, d := range b.Days {
		delete(d.Cajas, caja)
	}
	return s.saveLocked()
}

// ClearBoard wipes one board's week. Codes and personnel are untouched.
func (s *Store) ClearBoard(board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch board {
	case BoardCajeros:
		s.snap.Cajeros = NewBoard()
	case BoardEncargados:
		s.snap.Encargados = NewBoard()
	default:
		return fmt.Errorf("%w: board %q", ErrNotFound, board)
	}
	return s.saveLocked()
}

func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Cajeros = NewBoard()
	s.snap.Encargados = NewBoard()
	return s.saveLocked()
}

// Codes returns the code table sorted by signature.
func (s *Store) Codes() []CodeRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Codes.Rows()
}

func (s *Store) UpsertCode(signature, codigo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snap.Codes.Upsert(signature, codigo); err != nil {
		return err
	}
	return s.saveLocked()
}

func (s *Store) RemoveCode(signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Codes.Remove(signature) {
		return fmt.Errorf("%w: signature %q", ErrNotFound, signature)
	}
	return s.saveLocked()
}

// Personnel returns the roster sorted by name.
func (s *Store) Personnel() []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Person, len(s.snap.Personnel))
	copy(out, s.snap.Personnel)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) AddPerson(p Person) (Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Person{}, errors.New("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.personLocked(p.Name); exists {
		return Person{}, fmt.Errorf("person %q already exists", p.Name)
	}
	maxID := 0
	for _, existing := range s.snap.Personnel {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p.ID = maxID + 1
	s.snap.Personnel = append(s.snap.Personnel, p)
	s.touchRosterLocked()
	if err := s.saveLocked(); err != nil {
		return Person{}, err
	}
	return p, nil
}

// UpdatePerson replaces a roster entry by id. A rename migrates every grid
// slot and status entry carrying the old name.
func (s *Store) UpdatePerson(p Person) (Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Person{}, errors.New("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, existing := range s.snap.Personnel {
		if existing.ID == p.ID {
			idx = i
			continue
		}
		if existing.Name == p.Name {
			return Person{}, fmt.Errorf("person %q already exists", p.Name)
		}
	}
	if idx < 0 {
		return Person{}, fmt.Errorf("%w: person %d", ErrNotFound, p.ID)
	}

	oldName := s.snap.Personnel[idx].Name
	s.snap.Personnel[idx] = p
	if oldName != p.Name {
		s.renameEverywhereLocked(oldName, p.Name)
	}
	s.touchRosterLocked()
	if err := s.saveLocked(); err != nil {
		return Person{}, err
	}
	return p, nil
}

// RemovePerson deletes a roster entry and scrubs the name from both boards.
func (s *Store) RemovePerson(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, existing := range s.snap.Personnel {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: person %d", ErrNotFound, id)
	}
	name := s.snap.Personnel[idx].Name
	s.snap.Personnel = append(s.snap.Personnel[:idx], s.snap.Personnel[idx+1:]...)
	s.scrubNameLocked(name)
	s.touchRosterLocked()
	return s.saveLocked()
}

// ReplacePersonnel swaps the whole roster, assigning ids to entries that
// lack one. Used by spreadsheet import.
func (s *Store) ReplacePersonnel(people []Person) error {
	seen := map[string]bool{}
	for _, p := range people {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return errors.New("every person needs a name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate person %q", name)
		}
		seen[name] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextID := 1
	for i := range people {
		people[i].Name = strings.TrimSpace(people[i].Name)
		if people[i].ID == 0 {
			people[i].ID = nextID
		}
		if people[i].ID >= nextID {
			nextID = people[i].ID + 1
		}
	}
	s.snap.Personnel = people
	s.touchRosterLocked()
	return s.saveLocked()
}

func (s *Store) touchRosterLocked() {
	s.snap.Metadata.Total = len(s.snap.Personnel)
	s.snap.Metadata.LastUpdated = time.Now().UTC().Format("2006-01-02")
	if s.snap.Metadata.Version == "" {
		s.snap.Metadata.Version = snapshotVersion
	}
}

func (s *Store) renameEverywhereLocked(oldName, newName string) {
	for _, b := range []*Board{s.snap.Cajeros, s.snap.Encargados} {
		for _, d := range b.Days {
			for caja, row := range d.Cajas {
				for turno, slot := range row {
					if slot.Name == oldName {
						slot.Name = newName
						d.Cajas[caja][turno] = slot
					}
				}
			}
			for _, status := range Statuses {
				bucket := d.statusBucket(status)
				for i, entry := range *bucket {
					if entry == oldName {
						(*bucket)[i] = newName
					}
				}
				sort.Strings(*bucket)
			}
		}
	}
}

func (s *Store) scrubNameLocked(name string) {
	for _, b := range []*Board{s.snap.Cajeros, s.snap.Encargados} {
		for _, d := range b.Days {
			for key := range d.SlotsOf(name) {
				d.setSlot(key.Caja, key.Turno, ShiftSlot{})
			}
			for _, status := range Statuses {
				bucket := d.statusBucket(status)
				for i := 0; i < len(*bucket); i++ {
					if (*bucket)[i] == name {
						*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
						i--
					}
				}
			}
		}
	}
}

// Resolve computes one person's planilla cell for one day of a board.
func (s *Store) Resolve(board string, day int, name string) (Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.dayLocked(board, day)
	if err != nil {
		return Resolution{}, err
	}
	return Resolve(d, s.snap.Codes, name), nil
}

// Export returns a deep copy of the snapshot for backup.
func (s *Store) Export() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out Snapshot
	if err := deepcopy.Copy(&out, &s.snap); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

// Restore replaces the snapshot wholesale from a backup.
func (s *Store) Restore(snap Snapshot) error {
	snap.normalize()
	if snap.Version == "" {
		snap.Version = snapshotVersion
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return s.saveLocked()
}
