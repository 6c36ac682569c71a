package nx8

import (
	"fmt"

	"nx/hw/input"
)

// Reg designates one of the 16 registers.
type Reg uint8

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// Program assembles NX-8 machine code. Jump targets are labels, resolved
// by Assemble.
type Program struct {
	code   []byte
	labels map[string]uint16
	fixups []fixup
	err    error
}

type fixup struct {
	off   int
	label string
}

func NewProgram() *Program {
	return &Program{labels: make(map[string]uint16)}
}

// PC returns the address of the next instruction.
func (p *Program) PC() uint16 { return uint16(len(p.code)) }

func (p *Program) emit(op, a, b, c byte) *Program {
	p.code = append(p.code, op, a, b, c)
	return p
}

func (p *Program) emitImm(op byte, a Reg, imm uint16) *Program {
	return p.emit(op, byte(a), byte(imm), byte(imm>>8))
}

func (p *Program) emitJump(op byte, a Reg, label string) *Program {
	p.fixups = append(p.fixups, fixup{off: len(p.code) + 2, label: label})
	return p.emit(op, byte(a), 0, 0)
}

// Label defines name at the current address.
func (p *Program) Label(name string) *Program {
	if _, ok := p.labels[name]; ok && p.err == nil {
		p.err = fmt.Errorf("label %q redefined", name)
	}
	p.labels[name] = p.PC()
	return p
}

// Raw appends raw bytes.
func (p *Program) Raw(b ...byte) *Program {
	p.code = append(p.code, b...)
	return p
}

func (p *Program) NOP() *Program { return p.emit(opNOP, 0, 0, 0) }
func (p *Program) LDI(a Reg, v uint16) *Program { return p.emitImm(opLDI, a, v) }
func (p *Program) LUI(a Reg, v uint16) *Program { return p.emitImm(opLUI, a, v) }

// LDC loads a 32-bit constant (2 instructions).
func (p *Program) LDC(a Reg, v uint32) *Program {
	return p.LDI(a, uint16(v)).LUI(a, uint16(v>>16))
}

func (p *Program) MOV(a, b Reg) *Program { return p.emit(opMOV, byte(a), byte(b), 0) }
func (p *Program) ADD(a, b, c Reg) *Program { return p.emit(opADD, byte(a), byte(b), byte(c)) }
func (p *Program) SUB(a, b, c Reg) *Program { return p.emit(opSUB, byte(a), byte(b), byte(c)) }
func (p *Program) AND(a, b, c Reg) *Program { return p.emit(opAND, byte(a), byte(b), byte(c)) }
func (p *Program) OR(a, b, c Reg) *Program { return p.emit(opOR, byte(a), byte(b), byte(c)) }
func (p *Program) XOR(a, b, c Reg) *Program { return p.emit(opXOR, byte(a), byte(b), byte(c)) }
func (p *Program) SHL(a, b, c Reg) *Program { return p.emit(opSHL, byte(a), byte(b), byte(c)) }
func (p *Program) SHR(a, b, c Reg) *Program { return p.emit(opSHR, byte(a), byte(b), byte(c)) }
func (p *Program) SLT(a, b, c Reg) *Program { return p.emit(opSLT, byte(a), byte(b), byte(c)) }
func (p *Program) MUL(a, b, c Reg) *Program { return p.emit(opMUL, byte(a), byte(b), byte(c)) }
func (p *Program) ADDI(a Reg, v int16) *Program { return p.emitImm(opADDI, a, uint16(v)) }

func (p *Program) LDB(a, b Reg, off uint8) *Program { return p.emit(opLDB, byte(a), byte(b), off) }
func (p *Program) STB(a, b Reg, off uint8) *Program { return p.emit(opSTB, byte(a), byte(b), off) }
func (p *Program) LDW(a, b Reg, off uint8) *Program { return p.emit(opLDW, byte(a), byte(b), off) }
func (p *Program) STW(a, b Reg, off uint8) *Program { return p.emit(opSTW, byte(a), byte(b), off) }

func (p *Program) JMP(label string) *Program { return p.emitJump(opJMP, 0, label) }
func (p *Program) JZ(a Reg, label string) *Program { return p.emitJump(opJZ, a, label) }
func (p *Program) JNZ(a Reg, label string) *Program { return p.emitJump(opJNZ, a, label) }
func (p *Program) CALL(label string) *Program { return p.emitJump(opCALL, 0, label) }
func (p *Program) RET() *Program { return p.emit(opRET, 0, 0, 0) }
func (p *Program) PLOT(x, y, color Reg) *Program { return p.emit(opPLOT, byte(x), byte(y), byte(color)) }
func (p *Program) VSYNC() *Program { return p.emit(opVSYNC, 0, 0, 0) }
func (p *Program) BTN(a Reg, b input.Button) *Program { return p.emit(opBTN, byte(a), byte(b), 0) }
func (p *Program) AXIS(a Reg, ax input.Axis) *Program { return p.emit(opAXIS, byte(a), byte(ax), 0) }
func (p *Program) HALT() *Program { return p.emit(opHALT, 0, 0, 0) }

// Assemble resolves labels and returns the machine code.
func (p *Program) Assemble() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.code) > MaxProgram {
		return nil, fmt.Errorf("program too large: %d bytes", len(p.code))
	}
	code := append([]byte(nil), p.code...)
	for _, fix := range p.fixups {
		addr, ok := p.labels[fix.label]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", fix.label)
		}
		code[fix.off] = byte(addr)
		code[fix.off+1] = byte(addr >> 8)
	}
	return code, nil
}
