package core

import "testing"

func TestFileLoadStore(t *testing.T) {
	f := NewFile()
	cell := NewCell(100)
	f.Bind(0x10, cell)

	if v := f.Load(0x10); v != 100 {
		t.Errorf("Load = %d, want 100", v)
	}
	if !f.Store(0x10, 200) {
		t.Error("Store should hit a bound cell")
	}
	if v := f.Load(0x10); v != 200 {
		t.Errorf("Load = %d after store, want 200", v)
	}
}

func TestFileUnknownAddress(t *testing.T) {
	f := NewFile()

	if v := f.Load(0x42); v != Sentinel {
		t.Errorf("Load of unbound address = %#04x, want sentinel", v)
	}
	if f.Store(0x42, 1) {
		t.Error("Store to unbound address should report a miss")
	}
}

func TestCapabilityRestriction(t *testing.T) {
	f := NewFile()
	cell := NewCell(7)
	f.Bind(0x01, GetOnly(cell))
	f.Bind(0x02, SetOnly(cell))

	if v := f.Load(0x01); v != 7 {
		t.Errorf("Load via get-only = %d, want 7", v)
	}
	if f.Store(0x01, 9) {
		t.Error("Store via get-only binding should be discarded")
	}
	if cell.Get() != 7 {
		t.Errorf("cell = %d after discarded store, want 7", cell.Get())
	}

	if v := f.Load(0x02); v != Sentinel {
		t.Errorf("Load via set-only = %#04x, want sentinel", v)
	}
	if !f.Store(0x02, 9) {
		t.Error("Store via set-only binding should hit")
	}
	if cell.Get() != 9 {
		t.Errorf("cell = %d, want 9", cell.Get())
	}
}

func TestVoltageFileAliasesOneCell(t *testing.T) {
	f, cell := NewVoltageFile(3542)

	if v := f.Load(GetVoltageReg); v != 3542 {
		t.Errorf("initial load = %d, want 3542", v)
	}

	// The set path and the get path share storage.
	f.Store(SetVoltageReg, 1234)
	if v := f.Load(GetVoltageReg); v != 1234 {
		t.Errorf("load after aliased store = %d, want 1234", v)
	}
	if cell.Get() != 1234 {
		t.Errorf("cell = %d, want 1234", cell.Get())
	}

	// Asymmetry is part of the protocol: the get address rejects writes,
	// the set address reads as sentinel.
	if f.Store(GetVoltageReg, 1) {
		t.Error("get register should not accept writes")
	}
	if v := f.Load(SetVoltageReg); v != Sentinel {
		t.Errorf("load of set register = %#04x, want sentinel", v)
	}
}

func TestBindReplaces(t *testing.T) {
	f := NewFile()
	f.Bind(0x03, NewCell(1))
	f.Bind(0x03, NewCell(2))
	if v := f.Load(0x03); v != 2 {
		t.Errorf("Load = %d after rebind, want 2", v)
	}
}
