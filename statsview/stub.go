//go:build !statsview

package statsview

import "io"

func Launch(io.Writer) {}

func Available() bool { return false }
