package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrStopped is returned by AdvanceFrame when Stop was requested. The
	// frame is left open and the next AdvanceFrame resumes it.
	ErrStopped = errors.New("frame stopped")

	// ErrHalted is returned by AdvanceFrame on a core that faulted and was not
	// reset since. It wraps the original fault.
	ErrHalted = errors.New("core halted")
)

//go:generate go tool stringer -type FaultCode -linecomment

// A FaultCode classifies an execution fault.
type FaultCode uint8

const (
	FaultIllegalOp     FaultCode = iota + 1 // illegal-op
	FaultBusError                           // bus-error
	FaultWriteProtect                       // write-protect
	FaultUnimplemented                      // unimplemented
	FaultInternal                           // internal
)

// An ExecutionFault is an unrecoverable error raised by an execution unit
// during a step. The step that faulted must not have mutated the unit state.
type ExecutionFault struct {
	Code   FaultCode
	Reason string // diagnostic, may be empty
	PC     uint32 // unit specific location of the fault
}

// Fault returns an ExecutionFault with a formatted diagnostic.
func Fault(code FaultCode, pc uint32, format string, args ...any) *ExecutionFault {
	return &ExecutionFault{Code: code, PC: pc, Reason: fmt.Sprintf(format, args...)}
}

func (f *ExecutionFault) Error() string {
	if f.Reason == "" {
		return fmt.Sprintf("execution fault: %s at $%04X", f.Code, f.PC)
	}
	return fmt.Sprintf("execution fault: %s at $%04X: %s", f.Code, f.PC, f.Reason)
}

// OutOfBoundsError reports a framebuffer write outside its dimensions.
type OutOfBoundsError struct {
	X, Y          uint32
	Width, Height uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pixel (%d,%d) out of bounds of %dx%d framebuffer", e.X, e.Y, e.Width, e.Height)
}

// ConfigError reports an invalid core configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}
