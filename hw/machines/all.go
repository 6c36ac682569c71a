// Package machines is the registry of the available execution units.
package machines

import (
	"fmt"
	"slices"
	"strings"

	"nx/hw"
	"nx/hw/machines/fill"
	"nx/hw/machines/nx8"
)

// Options are the parameters common to all machines.
type Options struct {
	Program []byte // nil selects the machine built-in program, if any
	Width   uint32
	Height  uint32
}

type Desc struct {
	Name string
	Help string

	// AcceptsProgram reports whether the machine runs a program image.
	AcceptsProgram bool

	New func(Options) (hw.Unit, error)
}

var All = map[string]Desc{
	"nx8":  NX8,
	"fill": Fill,
}

var NX8 = Desc{
	Name:           "nx8",
	Help:           "NX-8 register machine (runs a built-in demo without program)",
	AcceptsProgram: true,
	New: func(opts Options) (hw.Unit, error) {
		prog := opts.Program
		if prog == nil {
			prog = nx8.Demo()
		}
		return nx8.New(prog, opts.Width, opts.Height)
	},
}

var Fill = Desc{
	Name: "fill",
	Help: "fills the screen with a constant color",
	New: func(opts Options) (hw.Unit, error) {
		return fill.New(opts.Width, opts.Height), nil
	},
}

// Load creates the execution unit of the named machine.
func Load(name string, opts Options) (hw.Unit, error) {
	desc, ok := All[name]
	if !ok {
		return nil, fmt.Errorf("unknown machine %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if opts.Program != nil && !desc.AcceptsProgram {
		return nil, fmt.Errorf("machine %s does not run programs", name)
	}
	unit, err := desc.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine %s: %w", name, err)
	}
	return unit, nil
}

// Names returns the sorted machine names.
func Names() []string {
	names := make([]string, 0, len(All))
	for name := range All {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
