package schedule

import "testing"

func TestResolvePriority(t *testing.T) {
	codes := CodeTable{"08:00-16:00": {Codigo: "00125"}}

	d := dayWithSlots(map[SlotKey]ShiftSlot{
		{Caja: 1, Turno: Turno1}: {Name: "Ana", Entrada: "08:00", Salida: "16:00"},
	})
	d.Francos = []string{"Ana"}

	got := Resolve(d, codes, "Ana")
	if got.Type != ResolutionFranco || got.Code != "F" || got.Hours != 0 {
		t.Fatalf("franco should win over a timed grid slot, got %+v", got)
	}
}

func TestResolveStatuses(t *testing.T) {
	tests := []struct {
		status   Status
		code     string
		schedule string
		typ      ResolutionType
	}{
		{StatusFranco, "F", "Franco", ResolutionFranco},
		{StatusLicencia, "L", "Licencia", ResolutionLicencia},
		{StatusVacaciones, "V", "Vacaciones", ResolutionVacaciones},
	}
	for _, tt := range tests {
		d := NewDaySchedule()
		*d.statusBucket(tt.status) = []string{"Ana"}
		got := Resolve(d, CodeTable{}, "Ana")
		if got.Code != tt.code || got.Schedule != tt.schedule || got.Type != tt.typ || got.Hours != 0 {
			t.Errorf("Resolve with %s = %+v", tt.status, got)
		}
	}
}

func TestResolveEmptyDay(t *testing.T) {
	got := Resolve(NewDaySchedule(), CodeTable{}, "Ana")
	if got.Code != "-" || got.Type != ResolutionEmpty || got.Hours != 0 {
		t.Fatalf("empty day resolution = %+v", got)
	}
	if got.Schedule != "-" {
		t.Fatalf("empty day schedule = %q, want %q", got.Schedule, "-")
	}
}

func TestResolveUnregisteredSignatureKeepsHours(t *testing.T) {
	d := dayWithSlots(map[SlotKey]ShiftSlot{
		{Caja: 4, Turno: Turno2}: {Name: "Smith", Entrada: "09:00", Salida: "17:00"},
	})
	codes := CodeTable{}

	got := Resolve(d, codes, "Smith")
	if got.Code != "?" || got.Hours != 8 || got.Type != ResolutionNormal {
		t.Fatalf("miss resolution = %+v", got)
	}
	if got.Schedule != "09:00-17:00" {
		t.Fatalf("miss schedule = %q", got.Schedule)
	}

	if err := codes.Upsert("09:00-17:00", "42"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got = Resolve(d, codes, "Smith")
	if got.Code != "00042" || got.Hours != 8 {
		t.Fatalf("resolution after registering code = %+v", got)
	}
}

func TestResolutionTypeJSON(t *testing.T) {
	data, err := ResolutionVacaciones.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"vacaciones"` {
		t.Fatalf("marshal = %s", data)
	}
}
