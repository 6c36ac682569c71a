//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const (
	Address = "localhost:12600"
	url     = "/debug/statsview"
)

// Launch starts the statistics server in a new goroutine.
func Launch(w io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(w, "stats server available at %s%s\n", Address, url)
}

// Available reports whether the statistics server can be launched.
func Available() bool { return true }
