package nx8

import "nx/hw/input"

const (
	demoBackground = 0xFF302010
	demoSprite     = 0xFFE0C040
	demoSize       = 8
)

// Demo returns a program that clears the screen, then moves an 8x8 square
// with the directional buttons, one pixel per frame.
func Demo() []byte {
	p := NewProgram()

	// r1: width, r2: height, r3: background, r6: sprite color
	// r4, r5: sprite position, r13, r14: max sprite position
	p.LDI(R7, IOBase+0x20).
		LDW(R1, R7, 0).
		LDW(R2, R7, 4).
		LDC(R3, demoBackground).
		LDC(R6, demoSprite)

	p.LDI(R9, 0).
		Label("clear_y").
		LDI(R8, 0).
		Label("clear_x").
		PLOT(R8, R9, R3).
		ADDI(R8, 1).
		SLT(R10, R8, R1).
		JNZ(R10, "clear_x").
		ADDI(R9, 1).
		SLT(R10, R9, R2).
		JNZ(R10, "clear_y")

	p.LDI(R10, demoSize).
		SUB(R13, R1, R10).
		SUB(R14, R2, R10).
		LDI(R11, 1).
		SHR(R4, R13, R11).
		SHR(R5, R14, R11)

	p.Label("frame").
		MOV(R12, R3).
		CALL("square")

	p.BTN(R10, input.ButtonLeft).
		JZ(R10, "no_left").
		JZ(R4, "no_left").
		ADDI(R4, -1).
		Label("no_left").
		BTN(R10, input.ButtonRight).
		JZ(R10, "no_right").
		SLT(R10, R4, R13).
		JZ(R10, "no_right").
		ADDI(R4, 1).
		Label("no_right").
		BTN(R10, input.ButtonUp).
		JZ(R10, "no_up").
		JZ(R5, "no_up").
		ADDI(R5, -1).
		Label("no_up").
		BTN(R10, input.ButtonDown).
		JZ(R10, "no_down").
		SLT(R10, R5, R14).
		JZ(R10, "no_down").
		ADDI(R5, 1).
		Label("no_down")

	p.MOV(R12, R6).
		CALL("square").
		VSYNC().
		JMP("frame")

	// square draws the sprite at (r4, r5) with color r12.
	p.Label("square").
		LDI(R9, 0).
		Label("sq_y").
		LDI(R8, 0).
		Label("sq_x").
		ADD(R0, R4, R8).
		ADD(R10, R5, R9).
		PLOT(R0, R10, R12).
		ADDI(R8, 1).
		LDI(R10, demoSize).
		SLT(R10, R8, R10).
		JNZ(R10, "sq_x").
		ADDI(R9, 1).
		LDI(R10, demoSize).
		SLT(R10, R9, R10).
		JNZ(R10, "sq_y").
		RET()

	code, err := p.Assemble()
	if err != nil {
		panic(err)
	}
	return code
}
