package keyboard

import "testing"

func TestGateAReflectsSelectedLine(t *testing.T) {
	line := byte(0)
	m := NewMatrix(func() byte { return line })
	m.SetKey(0, 3, true)

	if got := m.GateA(); got != ^byte(1<<3) {
		t.Errorf("GateA() = %#02x, want %#02x", got, ^byte(1<<3))
	}

	line = 1
	if got := m.GateA(); got != 0xFF {
		t.Errorf("GateA() on line 1 = %#02x, want 0xff (no keys held)", got)
	}
}

func TestGateBIgnoresScanLine(t *testing.T) {
	m := NewMatrix(func() byte { return 5 })
	m.SetKey(8, 0, true)

	got := m.GateB()
	if got&(1<<0) != 0 {
		t.Errorf("GateB() bit 0 not cleared for row 8 held: %#02x", got)
	}
	if got&(1<<1) == 0 {
		t.Errorf("GateB() bit 1 should stay set (row 9 not held): %#02x", got)
	}
}

func TestGateBPowerSwitch(t *testing.T) {
	m := NewMatrix(func() byte { return 0 })
	if m.GateB()&(1<<6) == 0 {
		t.Fatal("PWSW bit should be set (not pressed) before SetPowerSwitch")
	}
	m.SetPowerSwitch(true)
	if m.GateB()&(1<<6) != 0 {
		t.Fatal("PWSW bit should be cleared once held")
	}
}

func TestSetKeyOutOfRangeIsIgnored(t *testing.T) {
	m := NewMatrix(func() byte { return 0 })
	m.SetKey(99, 0, true)
	m.SetKey(0, 9, true)
	if m.GateA() != 0xFF {
		t.Fatalf("out-of-range SetKey should be a no-op, GateA() = %#02x", m.GateA())
	}
}
