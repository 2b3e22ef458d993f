package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawmux/internal/config"
)

// a job whose input and stream options are fully specified, so resolution
// never has to probe
const selfContainedJob = `
[[inputs]]
url = "in.raw"

[inputs.options]
f = "rawvideo"
pix_fmt = "rgb24"
s = "320x240"
r = 25

[[streams]]
map = "0:v:0"

[streams.options]
pix_fmt = "rgb24"
s = "320x240"
r = 25
`

func TestResolveJobAssignsOutputPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(selfContainedJob), 0o644))

	cfg := config.DefaultConfig()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	a, outputs, err := resolveJob(cmd, &cfg, hclog.NewNullLogger(), path)
	require.NoError(t, err)

	require.Len(t, outputs, 1)
	require.Len(t, a.Outputs, 1)
	assert.Equal(t, "pipe:1", a.Outputs[0].URL)
}
