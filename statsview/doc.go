// Package statsview serves runtime statistics over HTTP, for profiling the
// emulator. It's only available when built with the statsview tag:
//
//	go build -tags statsview
//
// Graphical statistics are then viewable at localhost:12600/debug/statsview
// and the standard pprof endpoints at localhost:12600/debug/pprof/.
package statsview
