package schedule

import "testing"

func TestCanAssign(t *testing.T) {
	existing := map[SlotKey]ShiftSlot{
		{Caja: 5, Turno: Turno1}: {Name: "Ana", Entrada: "09:00", Salida: "13:00"},
	}

	tests := []struct {
		name      string
		candidate ShiftSlot
		want      bool
	}{
		{"disjoint afternoon", ShiftSlot{Name: "Ana", Entrada: "14:00", Salida: "18:00"}, true},
		{"touching boundary", ShiftSlot{Name: "Ana", Entrada: "13:00", Salida: "17:00"}, true},
		{"touching before", ShiftSlot{Name: "Ana", Entrada: "05:00", Salida: "09:00"}, true},
		{"partial overlap", ShiftSlot{Name: "Ana", Entrada: "12:00", Salida: "16:00"}, false},
		{"contained", ShiftSlot{Name: "Ana", Entrada: "10:00", Salida: "11:00"}, false},
		{"containing", ShiftSlot{Name: "Ana", Entrada: "08:00", Salida: "14:00"}, false},
		{"untimed always allowed", ShiftSlot{Name: "Ana"}, true},
	}
	for _, tt := range tests {
		d := dayWithSlots(existing)
		if got := CanAssign(d, "Ana", tt.candidate, SlotKey{Caja: 9, Turno: Turno2}); got != tt.want {
			t.Errorf("%s: CanAssign = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanAssignSkipsOwnSlot(t *testing.T) {
	key := SlotKey{Caja: 5, Turno: Turno1}
	d := dayWithSlots(map[SlotKey]ShiftSlot{
		key: {Name: "Ana", Entrada: "09:00", Salida: "13:00"},
	})

	// Re-timing the same cell must not conflict with its old value.
	candidate := ShiftSlot{Name: "Ana", Entrada: "10:00", Salida: "14:00"}
	if !CanAssign(d, "Ana", candidate, key) {
		t.Fatalf("re-timing a slot in place should be allowed")
	}
}

func TestCanAssignIgnoresOtherPeople(t *testing.T) {
	d := dayWithSlots(map[SlotKey]ShiftSlot{
		{Caja: 5, Turno: Turno1}: {Name: "Bruno", Entrada: "09:00", Salida: "13:00"},
	})
	candidate := ShiftSlot{Name: "Ana", Entrada: "10:00", Salida: "14:00"}
	if !CanAssign(d, "Ana", candidate, SlotKey{Caja: 6, Turno: Turno1}) {
		t.Fatalf("other people's shifts must not block an assignment")
	}
}
