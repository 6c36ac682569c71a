package nx8

// Instructions are 4 bytes long: opcode, then 3 operand bytes a, b, c. The
// 16-bit immediate of some instructions is b|c<<8.

type format uint8

const (
	fmtNone   format = iota
	fmtR                    // rA
	fmtRR                   // rA, rB
	fmtRRR                  // rA, rB, rC
	fmtRImm                 // rA, #imm16
	fmtRSImm                // rA, #simm16
	fmtAddr                 // imm16 address
	fmtRAddr                // rA, imm16 address
	fmtRMem                 // rA, [rB+c]
	fmtRInput               // rA, input number b
)

type opinfo struct {
	name   string
	cycles uint32
	format format
}

const (
	opNOP   = 0x00
	opLDI   = 0x01
	opLUI   = 0x02
	opMOV   = 0x03
	opADD   = 0x04
	opSUB   = 0x05
	opAND   = 0x06
	opOR    = 0x07
	opXOR   = 0x08
	opSHL   = 0x09
	opSHR   = 0x0A
	opADDI  = 0x0B
	opSLT   = 0x0C
	opMUL   = 0x0D
	opLDB   = 0x10
	opSTB   = 0x11
	opLDW   = 0x12
	opSTW   = 0x13
	opJMP   = 0x20
	opJZ    = 0x21
	opJNZ   = 0x22
	opCALL  = 0x23
	opRET   = 0x24
	opPLOT  = 0x30
	opVSYNC = 0x31
	opBTN   = 0x32
	opAXIS  = 0x33
	opHALT  = 0x3F
)

// Opcodes missing from this table are illegal.
var ops = [256]opinfo{
	opNOP:   {"NOP", 1, fmtNone},
	opLDI:   {"LDI", 2, fmtRImm},
	opLUI:   {"LUI", 2, fmtRImm},
	opMOV:   {"MOV", 1, fmtRR},
	opADD:   {"ADD", 1, fmtRRR},
	opSUB:   {"SUB", 1, fmtRRR},
	opAND:   {"AND", 1, fmtRRR},
	opOR:    {"OR", 1, fmtRRR},
	opXOR:   {"XOR", 1, fmtRRR},
	opSHL:   {"SHL", 1, fmtRRR},
	opSHR:   {"SHR", 1, fmtRRR},
	opADDI:  {"ADDI", 1, fmtRSImm},
	opSLT:   {"SLT", 1, fmtRRR},
	opMUL:   {"MUL", 3, fmtRRR},
	opLDB:   {"LDB", 3, fmtRMem},
	opSTB:   {"STB", 3, fmtRMem},
	opLDW:   {"LDW", 4, fmtRMem},
	opSTW:   {"STW", 4, fmtRMem},
	opJMP:   {"JMP", 2, fmtAddr},
	opJZ:    {"JZ", 2, fmtRAddr},
	opJNZ:   {"JNZ", 2, fmtRAddr},
	opCALL:  {"CALL", 3, fmtAddr},
	opRET:   {"RET", 3, fmtNone},
	opPLOT:  {"PLOT", 4, fmtRRR},
	opVSYNC: {"VSYNC", 1, fmtNone},
	opBTN:   {"BTN", 1, fmtRInput},
	opAXIS:  {"AXIS", 1, fmtRInput},
	opHALT:  {"HALT", 1, fmtNone},
}

// regOperands returns the operand bytes that designate registers.
func (f format) regOperands(a, b, c uint8) []uint8 {
	switch f {
	case fmtR, fmtRImm, fmtRSImm, fmtRAddr, fmtRInput:
		return []uint8{a}
	case fmtRR, fmtRMem:
		return []uint8{a, b}
	case fmtRRR:
		return []uint8{a, b, c}
	}
	return nil
}
