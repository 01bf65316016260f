// Command fxrender runs a mono WAV file through an effect chain offline.
//
// Usage:
//
//	fxrender [flags] -preset chain.yaml -in dry.wav -out wet.wav
//
// The preset lists effects in signal order; see package preset for the
// format. Reverb impulse responses are read relative to -ir-root.
//
// Examples:
//
//	fxrender -preset chain.yaml -in guitar.wav -out guitar-fx.wav
//	fxrender -preset chain.yaml -in vox.wav -out vox-fx.wav -tail 3 -pcm16
//	fxrender -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-fxgraph/dsp/fx"
	"github.com/cwbudde/algo-fxgraph/dsp/irload"
	"github.com/cwbudde/algo-fxgraph/dsp/preset"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

type options struct {
	preset  string
	in      string
	out     string
	irRoot  string
	list    bool
	timeout time.Duration
	pcm16   bool
	tail    float64
	verbose bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.list {
		return printKinds(stdout, fx.DefaultRegistry(fx.WithLoader(irload.MapLoader{})))
	}

	return render(opts, logger)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("fxrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.preset, "preset", "", "effect chain preset (YAML or JSON)")
	fs.StringVar(&opts.in, "in", "", "input WAV file")
	fs.StringVar(&opts.out, "out", "out.wav", "output WAV file")
	fs.StringVar(&opts.irRoot, "ir-root", ".", "directory impulse response locators are relative to")
	fs.BoolVar(&opts.list, "list", false, "list effect kinds and their default settings")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "maximum time to wait for impulse responses")
	fs.BoolVar(&opts.pcm16, "pcm16", false, "write 16 bit PCM instead of 32 bit float")
	fs.Float64Var(&opts.tail, "tail", 1, "seconds of silence rendered after the input")
	fs.BoolVar(&opts.verbose, "v", false, "log load and render progress")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: fxrender [flags] -preset chain.yaml -in dry.wav -out wet.wav\n\n")
		fmt.Fprintf(stderr, "Renders a WAV file through an effect chain offline.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.list {
		return opts, nil
	}

	if opts.preset == "" || opts.in == "" {
		fs.Usage()

		return opts, errors.New("-preset and -in are required")
	}

	if opts.tail < 0 {
		return opts, fmt.Errorf("-tail must be non-negative, got %g", opts.tail)
	}

	return opts, nil
}

func render(opts options, logger *slog.Logger) error {
	p, err := preset.Load(opts.preset)
	if err != nil {
		return err
	}

	dry, err := readWAV(opts.in)
	if err != nil {
		return err
	}

	ctxOpts := []unit.Option{unit.WithSampleRate(dry.SampleRate)}
	ctxOpts = append(ctxOpts, p.ContextOptions()...)
	ctx := unit.NewContext(ctxOpts...)

	if ctx.SampleRate() != dry.SampleRate {
		logger.Warn("input sample rate differs from preset; rendering without resampling",
			"input", dry.SampleRate, "preset", ctx.SampleRate())
	}

	loader := irload.NewFileLoader(os.DirFS(opts.irRoot), irload.WithLogger(logger))
	reg := p.Registry(fx.WithLoader(loader), fx.WithLogger(logger))

	chain, err := p.Build(ctx, reg)
	if err != nil {
		return err
	}

	wait, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := chain.Wait(wait); err != nil {
		return fmt.Errorf("waiting for effects: %w", err)
	}

	in, out := ctx.NewGain(), ctx.NewGain()
	if err := chain.Wire(ctx, in, out); err != nil {
		return err
	}

	signal := dry.Mono()
	signal = append(signal, make([]float64, int(opts.tail*ctx.SampleRate()))...)

	start := time.Now()

	wet, err := ctx.Render(signal, in, out)
	if err != nil {
		return err
	}

	logger.Debug("rendered",
		"stages", len(chain.Stages), "frames", len(wet), "edges", len(ctx.Edges()), "elapsed", time.Since(start))

	return writeWAV(opts.out, unit.NewMonoBuffer(ctx.SampleRate(), wet), opts.pcm16)
}

func readWAV(path string) (*unit.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := irload.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return buf, nil
}

func writeWAV(path string, buf *unit.Buffer, pcm16 bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := irload.EncodeWAV(f, buf, pcm16); err != nil {
		_ = f.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

func printKinds(w io.Writer, reg *fx.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Kind\tSetting\tDefault\n----\t-------\t-------\n"); err != nil {
		return err
	}

	for _, kind := range reg.Kinds() {
		defaults, _ := reg.Defaults(kind)

		for _, row := range settingRows(defaults) {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", kind, row[0], row[1]); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func settingRows(s fx.Settings) [][2]string {
	rows := make([][2]string, 0, len(s.Num)+len(s.Str))

	for k, v := range s.Num {
		rows = append(rows, [2]string{k, fmt.Sprintf("%g", v)})
	}

	for k, v := range s.Str {
		if v == "" {
			v = "-"
		}

		rows = append(rows, [2]string{k, v})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	return rows
}
