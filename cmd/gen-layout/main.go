/*
 * gen-layout lays out a knowledge graph snapshot (json or yaml, from a file
 * or stdin) headless and writes the node positions as json to stdout
 */
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
	"github.com/suxatcode/knowledge-graph-view/viewer"
)

type options struct {
	Input    string
	Format   string
	Tuning   string
	PNG      string
	MaxTicks int
	Width    int
	Height   int
	Quiet    bool
}

type result struct {
	Positions []layout.Placement `json:"positions"`
	Quality   layout.Quality     `json:"quality"`
	Ticks     int                `json:"ticks"`
	Converged bool               `json:"converged"`
}

var (
	good  = color.New(color.FgGreen)
	warn  = color.New(color.FgYellow)
	bad   = color.New(color.FgRed, color.Bold)
	label = color.New(color.FgCyan)
)

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "gen-layout [flags]",
		Short: "Lay out a knowledge graph snapshot and print node positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "input", "i", "-", "snapshot file, - for stdin")
	flags.StringVarP(&opts.Format, "format", "f", "", "snapshot format {json, yaml}, default from the input extension")
	flags.StringVar(&opts.Tuning, "tuning", "", "toml file overriding simulation parameters")
	flags.StringVar(&opts.PNG, "png", "", "also render the final layout to this png file")
	flags.IntVar(&opts.MaxTicks, "max-ticks", 10000, "stop after this many ticks even if not converged")
	flags.IntVar(&opts.Width, "width", 1200, "canvas width")
	flags.IntVar(&opts.Height, "height", 600, "canvas height")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "no summary on stderr")
	return cmd
}

func readSnapshot(opts options, stdin io.Reader) (*model.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	format := model.Format(opts.Format)
	if opts.Input == "-" || opts.Input == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.Input)
		if format == "" {
			format = model.FormatFromExtension(filepath.Ext(opts.Input))
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	return model.Decode(data, format)
}

func loadTuning(path string, conf *layout.ForceSimulationConfig) error {
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return errors.Wrapf(err, "tuning file %s", path)
	}
	return nil
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	snapshot, err := readSnapshot(opts, stdin)
	if err != nil {
		return err
	}
	conf := layout.DefaultForceSimulationConfig
	if err := loadTuning(opts.Tuning, &conf); err != nil {
		return err
	}
	conf.Viewport = layout.Viewport{Width: float64(opts.Width), Height: float64(opts.Height)}

	frames := &viewer.FrameQueue{}
	engine, err := viewer.NewEngine(viewer.Options{Layout: conf, Render: render.DefaultOptions, Frames: frames})
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.SetGraph(snapshot)

	start := time.Now()
	for ticks := 0; !engine.Idle() && (opts.MaxTicks <= 0 || ticks < opts.MaxTicks); ticks++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frames.Flush()
	}
	res := result{
		Positions: engine.Placements(),
		Quality:   engine.Quality(),
		Ticks:     engine.Stats().Ticks,
		Converged: engine.Idle(),
	}
	if opts.PNG != "" {
		if err := writePNG(opts.PNG, engine); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return errors.Wrap(err, "write positions")
	}
	if !opts.Quiet {
		printSummary(stderr, res, time.Since(start))
	}
	return nil
}

func writePNG(path string, engine *viewer.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	if err := render.EncodePNG(f, engine.Frame()); err != nil {
		f.Close()
		return errors.Wrap(err, "encode png")
	}
	return f.Close()
}

func printSummary(w io.Writer, res result, took time.Duration) {
	q := res.Quality
	label.Fprint(w, "graph     ")
	fmt.Fprintf(w, "%d nodes, %d links\n", q.Nodes, q.Links)
	label.Fprint(w, "layout    ")
	if res.Converged {
		good.Fprintf(w, "converged")
	} else {
		warn.Fprintf(w, "not converged")
	}
	fmt.Fprintf(w, " after %d ticks (%s)\n", res.Ticks, took.Round(time.Millisecond))
	label.Fprint(w, "links     ")
	fmt.Fprintf(w, "mean %.1f px, stddev %.1f px\n", q.MeanLinkLength, q.StdDevLinkLength)
	label.Fprint(w, "spacing   ")
	fmt.Fprintf(w, "min %.1f px, ", q.MinNodeDistance)
	if q.Overlaps > 0 {
		bad.Fprintf(w, "%d overlaps\n", q.Overlaps)
	} else {
		good.Fprintf(w, "no overlaps\n")
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
