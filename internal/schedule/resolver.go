package schedule

import (
	"encoding/json"
	"fmt"
)

// ResolutionType classifies what a person's planilla cell contains for one
// day. Statuses win over grid assignments; the empty case covers people with
// no slot and no status.
type ResolutionType int

const (
	ResolutionNormal ResolutionType = iota
	ResolutionFranco
	ResolutionLicencia
	ResolutionVacaciones
	ResolutionEmpty
)

func (t ResolutionType) String() string {
	switch t {
	case ResolutionNormal:
		return "normal"
	case ResolutionFranco:
		return "franco"
	case ResolutionLicencia:
		return "licencia"
	case ResolutionVacaciones:
		return "vacaciones"
	case ResolutionEmpty:
		return "empty"
	}
	return fmt.Sprintf("ResolutionType(%d)", int(t))
}

func (t ResolutionType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ResolutionType) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag {
	case "normal":
		*t = ResolutionNormal
	case "franco":
		*t = ResolutionFranco
	case "licencia":
		*t = ResolutionLicencia
	case "vacaciones":
		*t = ResolutionVacaciones
	case "empty":
		*t = ResolutionEmpty
	default:
		return fmt.Errorf("unknown resolution type %q", tag)
	}
	return nil
}

// Resolution is the resolved planilla cell: the code to print, the worked
// hours, and the display schedule.
type Resolution struct {
	Code     string         `json:"code"`
	Hours    float64        `json:"hours"`
	Schedule string         `json:"schedule"`
	Type     ResolutionType `json:"type"`
}

// Resolve computes one person's cell for one day. Priority order: franco,
// licencia, vacaciones, then the grid. A timed grid day resolves through the
// code table; an unregistered signature keeps its hours but renders "?".
func Resolve(day *DaySchedule, codes CodeTable, name string) Resolution {
	if status, ok := day.StatusOf(name); ok {
		switch status {
		case StatusFranco:
			return Resolution{Code: "F", Schedule: "Franco", Type: ResolutionFranco}
		case StatusLicencia:
			return Resolution{Code: "L", Schedule: "Licencia", Type: ResolutionLicencia}
		case StatusVacaciones:
			return Resolution{Code: "V", Schedule: "Vacaciones", Type: ResolutionVacaciones}
		}
	}

	signature := BuildSignature(day, name)
	if signature == "" {
		return Resolution{Code: "-", Schedule: "-", Type: ResolutionEmpty}
	}

	resolution := Resolution{
		Code:     "?",
		Hours:    ComputeDuration(signature),
		Schedule: Humanize(signature),
		Type:     ResolutionNormal,
	}
	if entry, ok := codes.Lookup(signature); ok {
		resolution.Code = entry.Codigo
	}
	return resolution
}
