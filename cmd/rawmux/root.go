package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/backmassage/rawmux/internal/check"
	"github.com/backmassage/rawmux/internal/config"
	"github.com/backmassage/rawmux/internal/display"
	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/ffmpeg"
	"github.com/backmassage/rawmux/internal/jobfile"
	"github.com/backmassage/rawmux/internal/logging"
	"github.com/backmassage/rawmux/internal/probe"
	"github.com/backmassage/rawmux/internal/rawformat"
	"github.com/backmassage/rawmux/internal/resolve"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var colorMode string

	root := &cobra.Command{
		Use:           "rawmux",
		Short:         "Resolve media I/O jobs into ffmpeg invocations",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.ColorMode = config.ColorMode(colorMode)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return config.Tools.Resolve()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.FFmpegPath, "ffmpeg", "", "path to the ffmpeg executable")
	pf.StringVar(&cfg.FFprobePath, "ffprobe", "", "path to the ffprobe executable")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	pf.StringVar(&colorMode, "color", string(cfg.ColorMode), "colored logs (auto, always, never)")
	pf.BoolVarP(&cfg.Overwrite, "overwrite", "y", false, "overwrite existing output files")

	root.AddCommand(newProbeCmd(cfg), newPlanCmd(cfg), newRunCmd(cfg), newCheckCmd(cfg))
	return root
}

func newCheckCmd(cfg *config.Config) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Diagnose the ffmpeg and ffprobe installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cfg)
			check.Run(cmd.Context(), log)
			if strict {
				return check.Verify(cmd.Context())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a required capability is missing")
	return cmd
}

// blockBytes is the size of one video frame or one audio sample block.
func blockBytes(m *resolve.MediaInfo) int64 {
	n := int64(rawformat.ItemSize(m.Dtype))
	for _, dim := range m.Shape {
		n *= int64(dim)
	}
	return n
}

func newProbeCmd(cfg *config.Config) *cobra.Command {
	var format, selectSpec string

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Inspect the streams of a media source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cfg)
			p := probe.New(log)
			streams, err := p.Streams(cmd.Context(),
				probe.Source{URL: args[0], Format: format}, selectSpec)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(streams)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "force the demuxer format (e.g. lavfi)")
	cmd.Flags().StringVarP(&selectSpec, "select", "s", "", "stream selection specifier")
	return cmd
}

func newPlanCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <job.toml>",
		Short: "Resolve a job file and print the ffmpeg command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cfg)
			a, outputs, err := resolveJob(cmd, cfg, log, args[0])
			if err != nil {
				return err
			}
			for _, o := range outputs {
				kv := []any{"map", o.Key, "media", o.MediaType}
				if m := o.Media; m != nil {
					kv = append(kv, "dtype", m.Dtype, "shape", m.Shape, "rate", m.Rate)
					if block := blockBytes(m); block > 0 {
						kv = append(kv, "block", display.FormatBytes(block))
						if hz, ok := display.RatioValue(m.Rate); ok && hz > 0 {
							kbps := int64(float64(block) * 8 * hz / 1000)
							kv = append(kv, "data_rate", display.FormatBitrateLabel(kbps))
						}
					}
				}
				log.Info("resolved stream", kv...)
			}
			fmt.Println("ffmpeg " + strings.Join(ffmpeg.Build(a), " "))
			return nil
		},
	}
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job.toml>",
		Short: "Resolve a job file and run ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cfg)
			a, outputs, err := resolveJob(cmd, cfg, log, args[0])
			if err != nil {
				return err
			}
			if len(outputs) > 1 {
				return fmt.Errorf("job resolves to %d output streams; run writes exactly one to stdout, map a single stream", len(outputs))
			}
			res := ffmpeg.Execute(cmd.Context(), log, a, nil, os.Stdout, os.Stderr)
			return res.Err
		},
	}
}

func resolveJob(cmd *cobra.Command, cfg *config.Config, log hclog.Logger, path string) (*ffargs.Args, []resolve.OutputStream, error) {
	job, err := jobfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	inputs, streams, options := job.ReadRequest()
	if cfg.Overwrite {
		if options == nil {
			options = ffargs.NewOptions()
		}
		options.SetFlag("y")
	}

	r := resolve.New(log, probe.New(log), nil)
	a, _, outputs, err := r.InitMediaRead(cmd.Context(), inputs, streams, options)
	if err != nil {
		return nil, nil, err
	}

	// resolved outputs carry empty placeholder urls; point the first at
	// stdout and the rest at inherited descriptors
	for i := range a.Outputs {
		url := "pipe:1"
		if i > 0 {
			url = fmt.Sprintf("pipe:%d", i+2)
		}
		if err := a.AssignOutputURL(i, url); err != nil {
			return nil, nil, err
		}
	}
	return a, outputs, nil
}
