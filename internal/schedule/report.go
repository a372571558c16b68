package schedule

import "sort"

// ReportRow is one printed planilla line: a person, their seven resolved
// cells, and the weekly totals against their contract.
type ReportRow struct {
	Person     Person       `json:"person"`
	Days       []Resolution `json:"days"`
	TotalHours float64      `json:"totalHours"`
	ExtraHours float64      `json:"extraHours"`
}

type WeekReport struct {
	Week string      `json:"week"`
	Rows []ReportRow `json:"rows"`
}

// WeekReportData resolves the whole week: active cashiers first, ordered by
// contract hours (largest first) then name, with active managers appended
// alphabetically. Cashiers resolve against the cajeros board, managers
// against encargados.
func (s *Store) WeekReportData() WeekReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cashiers, managers []Person
	for _, p := range s.snap.Personnel {
		if !p.Active {
			continue
		}
		if p.IsManager {
			managers = append(managers, p)
		} else {
			cashiers = append(cashiers, p)
		}
	}
	sort.Slice(cashiers, func(i, j int) bool {
		if cashiers[i].WeeklyHours != cashiers[j].WeeklyHours {
			return cashiers[i].WeeklyHours > cashiers[j].WeeklyHours
		}
		return cashiers[i].Name < cashiers[j].Name
	})
	sort.Slice(managers, func(i, j int) bool { return managers[i].Name < managers[j].Name })

	report := WeekReport{Week: s.snap.Week}
	for _, p := range cashiers {
		report.Rows = append(report.Rows, s.reportRowLocked(p, s.snap.Cajeros))
	}
	for _, p := range managers {
		report.Rows = append(report.Rows, s.reportRowLocked(p, s.snap.Encargados))
	}
	return report
}

func (s *Store) reportRowLocked(p Person, b *Board) ReportRow {
	row := ReportRow{Person: p, Days: make([]Resolution, DaysPerWeek)}
	for day := 0; day < DaysPerWeek; day++ {
		resolution := Resolve(b.Days[day], s.snap.Codes, p.Name)
		row.Days[day] = resolution
		row.TotalHours += resolution.Hours
	}
	if row.TotalHours > p.WeeklyHours {
		row.ExtraHours = row.TotalHours - p.WeeklyHours
	}
	return row
}
