package nx8

import (
	"fmt"
	"io"
	"strings"

	"nx/hw/hwio"
	"nx/hw/input"
)

// DisasmOp is a single disassembled instruction.
type DisasmOp struct {
	PC     uint16
	Buf    [4]byte
	Opcode string
	Oper   string
	Cycles uint32
	Legal  bool
}

func (op DisasmOp) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04X  % X  ", op.PC, op.Buf[:])
	if !op.Legal {
		sb.WriteString(".db ")
		for i, b := range op.Buf {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%02X", b)
		}
		return sb.String()
	}
	if op.Oper == "" {
		sb.WriteString(op.Opcode)
	} else {
		fmt.Fprintf(&sb, "%-5s %s", op.Opcode, op.Oper)
	}
	return sb.String()
}

// Disasm decodes the instruction at pc. Memory is read with Peek8 so
// disassembling never has side effects.
func Disasm(bus hwio.BankIO8, pc uint16) DisasmOp {
	dop := DisasmOp{PC: pc}
	for i := range dop.Buf {
		dop.Buf[i] = bus.Peek8(pc + uint16(i))
	}
	op, a, b, c := dop.Buf[0], dop.Buf[1], dop.Buf[2], dop.Buf[3]
	info := &ops[op]
	if info.name == "" {
		return dop
	}
	for _, r := range info.format.regOperands(a, b, c) {
		if r >= NumRegs {
			return dop
		}
	}

	dop.Legal = true
	dop.Opcode = info.name
	dop.Cycles = info.cycles
	imm := uint16(b) | uint16(c)<<8

	switch info.format {
	case fmtR:
		dop.Oper = fmt.Sprintf("r%d", a)
	case fmtRR:
		dop.Oper = fmt.Sprintf("r%d, r%d", a, b)
	case fmtRRR:
		dop.Oper = fmt.Sprintf("r%d, r%d, r%d", a, b, c)
	case fmtRImm:
		dop.Oper = fmt.Sprintf("r%d, #$%04X", a, imm)
	case fmtRSImm:
		dop.Oper = fmt.Sprintf("r%d, #%d", a, int16(imm))
	case fmtAddr:
		dop.Oper = fmt.Sprintf("$%04X", imm)
	case fmtRAddr:
		dop.Oper = fmt.Sprintf("r%d, $%04X", a, imm)
	case fmtRMem:
		dop.Oper = fmt.Sprintf("r%d, [r%d+$%02X]", a, b, c)
	case fmtRInput:
		if op == opBTN && b < uint8(input.NumButtons) {
			dop.Oper = fmt.Sprintf("r%d, %s", a, input.Button(b))
		} else if op == opAXIS && b < uint8(input.NumAxes) {
			dop.Oper = fmt.Sprintf("r%d, %s", a, "XY"[b:b+1])
		} else {
			dop.Oper = fmt.Sprintf("r%d, %d", a, b)
		}
	}
	return dop
}

// Disassemble writes a listing of code, as loaded at address 0.
func Disassemble(w io.Writer, code []byte) error {
	if len(code) > MaxProgram {
		return fmt.Errorf("program too large: %d bytes (max %d)", len(code), MaxProgram)
	}
	buf := make([]byte, len(code)+3)
	copy(buf, code)
	bus := hwio.NewTable("disasm")
	bus.MapMemorySlice(0, 0xFFFF, pow2(buf), true)

	for pc := 0; pc < len(code); pc += 4 {
		if _, err := fmt.Fprintln(w, Disasm(bus, uint16(pc))); err != nil {
			return err
		}
	}
	return nil
}

// pow2 pads buf to the next power of 2.
func pow2(buf []byte) []byte {
	n := 1
	for n < len(buf) {
		n <<= 1
	}
	if n == len(buf) {
		return buf
	}
	out := make([]byte, n)
	copy(out, buf)
	return out
}
