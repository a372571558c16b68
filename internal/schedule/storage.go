package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const snapshotVersion = "2.1"

// Load reads the snapshot from disk. A missing file starts a fresh snapshot
// seeded from the crew reference files and writes it out immediately so the
// data file exists from the first run.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.snap = Snapshot{Version: snapshotVersion, Week: mondayOf(time.Now())}
		s.snap.normalize()
		s.seedFromCrewLocked()
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	snap.normalize()
	if snap.Version == "" {
		snap.Version = snapshotVersion
	}
	if snap.Week == "" {
		snap.Week = mondayOf(time.Now())
	}
	s.snap = snap
	return nil
}

// saveLocked persists the snapshot atomically: write a temp file in the same
// directory, keep the previous file as a rolling .backup, then rename the
// temp file into place. Callers must hold the write lock.
func (s *Store) saveLocked() error {
	s.snap.LastSaved = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(&s.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(s.path, s.path+".backup"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rotate backup: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// seedFromCrewLocked pulls the initial code table and roster from the crew
// reference files. Either file missing or malformed just leaves that section
// empty; the service stays usable.
func (s *Store) seedFromCrewLocked() {
	if s.crewDir == "" {
		return
	}

	codesPath := filepath.Join(s.crewDir, "schedule_codes.json")
	if data, err := os.ReadFile(codesPath); err == nil {
		var codes CodeTable
		if err := json.Unmarshal(data, &codes); err != nil {
			log.Printf("ignoring %s: %v", codesPath, err)
		} else {
			s.snap.Codes = codes
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring %s: %v", codesPath, err)
	}

	personnelPath := filepath.Join(s.crewDir, "personnel.json")
	if data, err := os.ReadFile(personnelPath); err == nil {
		var seed struct {
			Personnel []Person `json:"personnel"`
			Metadata  Metadata `json:"metadata"`
		}
		if err := json.Unmarshal(data, &seed); err != nil {
			log.Printf("ignoring %s: %v", personnelPath, err)
		} else {
			s.snap.Personnel = seed.Personnel
			s.snap.Metadata = seed.Metadata
			s.touchRosterLocked()
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring %s: %v", personnelPath, err)
	}

	s.snap.normalize()
}

func mondayOf(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}
