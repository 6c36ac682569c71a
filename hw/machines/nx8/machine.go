// Package nx8 implements the NX-8, a small 32-bit register machine with a
// 16-bit address space, memory-mapped input and a pixel plotting
// instruction.
//
// Memory map:
//
//	$0000-$EFFF  RAM, the program image is loaded at $0000 (entry point)
//	$F000-$F0FF  I/O registers, read-only
//	$F100-$FFFF  unmapped
//
// I/O registers (little-endian):
//
//	$F000  buttons bitmask (bit n: input.Button(n) pressed)
//	$F002  X axis, int16
//	$F004  Y axis, int16
//	$F010  number of VSYNC executed since reset, 32-bit
//	$F020  framebuffer width, 32-bit
//	$F024  framebuffer height, 32-bit
package nx8

import (
	"fmt"

	"nx/hw"
	"nx/hw/hwio"
	"nx/hw/input"
)

const (
	NumRegs = 16

	// LinkReg receives the return address of CALL.
	LinkReg = 15

	RAMSize    = 0xF000
	IOBase     = 0xF000
	IOSize     = 0x100
	MaxProgram = RAMSize
)

// Machine is the NX-8 execution unit.
type Machine struct {
	R  [NumRegs]uint32
	PC uint16

	Bus *hwio.Table

	ram     []byte
	io      hwio.Device
	program []byte
	width   uint32
	height  uint32
	vsyncs  uint32
	halted  bool

	in input.Latch // input of the current step
}

// New creates a machine running program, for a framebuffer of the given
// dimensions. The machine is at power-on state.
func New(program []byte, width, height uint32) (*Machine, error) {
	if len(program) > MaxProgram {
		return nil, fmt.Errorf("program too large: %d bytes (max %d)", len(program), MaxProgram)
	}
	m := newMachine(program, width, height)
	m.Reset()
	return m, nil
}

func newMachine(program []byte, width, height uint32) *Machine {
	m := &Machine{
		Bus:     hwio.NewTable("nx8"),
		ram:     make([]byte, 0x10000),
		program: program,
		width:   width,
		height:  height,
	}
	m.io = hwio.Device{
		Name:   "io",
		Size:   IOSize,
		Flags:  hwio.ReadOnlyFlag,
		ReadCb: m.readIO,
	}
	m.Bus.MapMem(0x0000, &hwio.Mem{Name: "ram", Data: m.ram, VSize: RAMSize})
	m.Bus.MapDevice(IOBase, &m.io)
	return m
}

func (m *Machine) readIO(addr uint16) uint8 {
	off := addr - IOBase
	word := func(v uint32) uint8 { return uint8(v >> (8 * (off & 3))) }

	switch {
	case off == 0x00:
		return m.in.Buttons()
	case off == 0x02, off == 0x03:
		return uint8(uint16(m.in.Axis(input.AxisX)) >> (8 * (off & 1)))
	case off == 0x04, off == 0x05:
		return uint8(uint16(m.in.Axis(input.AxisY)) >> (8 * (off & 1)))
	case off >= 0x10 && off < 0x14:
		return word(m.vsyncs)
	case off >= 0x20 && off < 0x24:
		return word(m.width)
	case off >= 0x24 && off < 0x28:
		return word(m.height)
	}
	return 0
}

// Reset clears registers and RAM and reloads the program image.
func (m *Machine) Reset() {
	m.R = [NumRegs]uint32{}
	m.PC = 0
	clear(m.ram)
	copy(m.ram, m.program)
	m.vsyncs = 0
	m.halted = false
	m.in = input.Latch{}
}

// Clone returns an independent copy of the machine, in the same state.
func (m *Machine) Clone() hw.Unit {
	c := newMachine(m.program, m.width, m.height)
	c.R = m.R
	c.PC = m.PC
	copy(c.ram, m.ram)
	c.vsyncs = m.vsyncs
	c.halted = m.halted
	c.in = m.in
	return c
}

// Halted reports whether the machine executed HALT.
func (m *Machine) Halted() bool { return m.halted }

func (m *Machine) fault(code hw.FaultCode, format string, args ...any) error {
	return hw.Fault(code, uint32(m.PC), format, args...)
}

// checkAccess verifies that n bytes from addr can be read (or written).
func (m *Machine) checkAccess(addr uint16, n int, write bool) error {
	for i := range n {
		a := addr + uint16(i)
		flags, mapped := m.Bus.Probe(a)
		switch {
		case !mapped:
			return m.fault(hw.FaultBusError, "access to unmapped address $%04X", a)
		case write && flags&hwio.ReadOnlyFlag != 0:
			return m.fault(hw.FaultWriteProtect, "write to read-only address $%04X", a)
		case !write && flags&hwio.WriteOnlyFlag != 0:
			return m.fault(hw.FaultBusError, "read from write-only address $%04X", a)
		}
	}
	return nil
}

// Step executes one instruction. All checks are made before the machine
// state is modified, so a faulting instruction has no effect.
func (m *Machine) Step(in input.Latch, out *hw.StepOutcome) (err error) {
	// The I/O registers read the latch of the step being run.
	prev := m.in
	m.in = in
	defer func() {
		if err != nil {
			m.in = prev
		}
	}()

	pc := m.PC
	if err := m.checkAccess(pc, 4, false); err != nil {
		return err
	}
	op := m.Bus.Read8(pc)
	a, b, c := m.Bus.Read8(pc+1), m.Bus.Read8(pc+2), m.Bus.Read8(pc+3)

	info := &ops[op]
	if info.name == "" {
		return m.fault(hw.FaultIllegalOp, "opcode $%02X", op)
	}
	for _, r := range info.format.regOperands(a, b, c) {
		if r >= NumRegs {
			return m.fault(hw.FaultIllegalOp, "%s: invalid register r%d", info.name, r)
		}
	}

	imm := uint16(b) | uint16(c)<<8
	next := pc + 4
	R := &m.R

	switch op {
	case opNOP:
	case opLDI:
		R[a] = uint32(imm)
	case opLUI:
		R[a] = R[a]&0xFFFF | uint32(imm)<<16
	case opMOV:
		R[a] = R[b]
	case opADD:
		R[a] = R[b] + R[c]
	case opSUB:
		R[a] = R[b] - R[c]
	case opAND:
		R[a] = R[b] & R[c]
	case opOR:
		R[a] = R[b] | R[c]
	case opXOR:
		R[a] = R[b] ^ R[c]
	case opSHL:
		R[a] = R[b] << (R[c] & 31)
	case opSHR:
		R[a] = R[b] >> (R[c] & 31)
	case opADDI:
		R[a] += uint32(int32(int16(imm)))
	case opSLT:
		R[a] = b2u(R[b] < R[c])
	case opMUL:
		R[a] = R[b] * R[c]

	case opLDB, opLDW:
		n := 1
		if op == opLDW {
			n = 4
		}
		addr := uint16(R[b] + uint32(c))
		if err := m.checkAccess(addr, n, false); err != nil {
			return err
		}
		if n == 1 {
			R[a] = uint32(m.Bus.Read8(addr))
		} else {
			R[a] = hwio.Read32(m.Bus, addr)
		}

	case opSTB, opSTW:
		n := 1
		if op == opSTW {
			n = 4
		}
		addr := uint16(R[b] + uint32(c))
		if err := m.checkAccess(addr, n, true); err != nil {
			return err
		}
		if n == 1 {
			m.Bus.Write8(addr, uint8(R[a]))
		} else {
			hwio.Write32(m.Bus, addr, R[a])
		}

	case opJMP:
		next = imm
	case opJZ:
		if R[a] == 0 {
			next = imm
		}
	case opJNZ:
		if R[a] != 0 {
			next = imm
		}
	case opCALL:
		R[LinkReg] = uint32(next)
		next = imm
	case opRET:
		next = uint16(R[LinkReg])

	case opPLOT:
		out.Plot(R[a], R[b], hw.Color(R[c]))
	case opVSYNC:
		m.vsyncs++
		out.Boundary = true
	case opBTN:
		if b >= uint8(input.NumButtons) {
			return m.fault(hw.FaultIllegalOp, "BTN: invalid button %d", b)
		}
		R[a] = b2u(in.Pressed(input.Button(b)))
	case opAXIS:
		if b >= uint8(input.NumAxes) {
			return m.fault(hw.FaultIllegalOp, "AXIS: invalid axis %d", b)
		}
		R[a] = uint32(int32(in.Axis(input.Axis(b))))
	case opHALT:
		m.halted = true
		next = pc

	default:
		return m.fault(hw.FaultUnimplemented, "%s", info.name)
	}

	m.PC = next
	out.Cycles = info.cycles
	return nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
