// Command rawmux resolves declarative media I/O jobs into complete ffmpeg
// command lines and runs them. It is a thin shell over the internal
// resolution engine; all decisions about maps, formats, and filters live
// there.
package main

import (
	"fmt"
	"os"

	"github.com/backmassage/rawmux/internal/config"
)

// version and commit are set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	cfg := config.DefaultConfig()
	if err := newRootCmd(&cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rawmux: %v\n", err)
		os.Exit(1)
	}
}
