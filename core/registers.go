package core

// Sentinel is the response for a read of an unknown or unselected
// register.
const Sentinel uint16 = 0xFFFF

// Register addresses of the minimal register map.
const (
	// GetVoltageReg serves the current voltage value on the two-phase
	// select-then-read path.
	GetVoltageReg uint8 = 0x08
	// SetVoltageReg accepts a big-endian 16-bit voltage on the
	// single-session write path.
	SetVoltageReg uint8 = 0x09
)

// Getter is the read capability of a register: encode the current value
// for transmission.
type Getter interface {
	Get() uint16
}

// Setter is the write capability of a register: accept a decoded value.
type Setter interface {
	Set(uint16)
}

// Cell is a plain 16-bit backing store carrying both capabilities.
type Cell struct {
	v uint16
}

// NewCell creates a cell holding v.
func NewCell(v uint16) *Cell {
	return &Cell{v: v}
}

func (c *Cell) Get() uint16 {
	return c.v
}

func (c *Cell) Set(v uint16) {
	c.v = v
}

type getOnly struct {
	g Getter
}

func (r getOnly) Get() uint16 {
	return r.g.Get()
}

type setOnly struct {
	s Setter
}

func (r setOnly) Set(v uint16) {
	r.s.Set(v)
}

// GetOnly restricts a register to the read path.
func GetOnly(g Getter) Getter {
	return getOnly{g: g}
}

// SetOnly restricts a register to the write path.
func SetOnly(s Setter) Setter {
	return setOnly{s: s}
}

// File maps single-byte register addresses to their capabilities. An
// address bound without a capability for a direction behaves like an
// unbound one for that direction: loads yield Sentinel, stores are
// discarded. Adding registers is a Bind call; the state machine never
// changes.
type File struct {
	regs map[uint8]interface{}
}

// NewFile creates an empty register file.
func NewFile() *File {
	return &File{regs: make(map[uint8]interface{})}
}

// Bind attaches reg (a Getter, a Setter, or both) at addr, replacing any
// previous binding.
func (f *File) Bind(addr uint8, reg interface{}) {
	f.regs[addr] = reg
}

// Load returns the value visible at addr, or Sentinel if nothing readable
// is bound there.
func (f *File) Load(addr uint8) uint16 {
	if g, ok := f.regs[addr].(Getter); ok {
		return g.Get()
	}
	return Sentinel
}

// Store commits a decoded value to addr. Reports whether a writable
// register accepted it; a miss is not an error, the value is simply
// discarded.
func (f *File) Store(addr uint8, v uint16) bool {
	if s, ok := f.regs[addr].(Setter); ok {
		s.Set(v)
		return true
	}
	return false
}

// NewVoltageFile builds the minimal register map: a single voltage cell,
// readable at GetVoltageReg and writable at SetVoltageReg. Both addresses
// alias the same storage; reading SetVoltageReg yields Sentinel. The
// returned cell lets platform code source or observe the value directly.
func NewVoltageFile(initial uint16) (*File, *Cell) {
	cell := NewCell(initial)
	f := NewFile()
	f.Bind(GetVoltageReg, GetOnly(cell))
	f.Bind(SetVoltageReg, SetOnly(cell))
	return f, cell
}
