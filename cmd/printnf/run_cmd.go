package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/host"
	"github.com/wippyai/wasm-printnf/internal/guestgen"
	"github.com/wippyai/wasm-printnf/runtime"
)

type runOptions struct {
	frames      int
	width       int32
	height      int32
	interactive bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	var demo bool
	cmd := &cobra.Command{
		Use:   "run [WASM]",
		Short: "Run a guest module against the env host functions.",
		Long: "Run loads a guest, sets its window size, calls init and then steps draw frames. " +
			"Headless runs print the guest output and the canvas operations of each frame.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var wasm []byte
			switch {
			case demo:
				wasm = guestgen.Demo()
			case len(args) == 1:
				b, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				wasm = b
			default:
				return errors.InvalidInput(errors.PhaseConfig, "need a WASM file or --demo")
			}
			if opts.interactive {
				return runInteractive(a, wasm, opts)
			}
			return runHeadless(cmd.Context(), a, wasm, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "run the built-in demo guest")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 3, "number of frames to step in headless mode")
	cmd.Flags().Int32Var(&opts.width, "width", 1440, "window width handed to the guest")
	cmd.Flags().Int32Var(&opts.height, "height", 810, "window height handed to the guest")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "draw the canvas in the terminal")
	return cmd
}

// session is a loaded guest with its host side.
type session struct {
	rt   *runtime.Runtime
	inst *runtime.Instance
	rec  *host.Recorder
}

func (a *app) startSession(ctx context.Context, wasm []byte, stdout io.Writer, opts runOptions) (*session, error) {
	rec := &host.Recorder{}
	rt, err := runtime.New(ctx, &runtime.Config{
		Logger:           a.logger,
		MemoryLimitPages: a.v.GetUint32(keyMemoryLimitPages),
		Env: host.Config{
			Stdout:   stdout,
			Canvas:   rec,
			Logger:   a.logger,
			Registry: a.registry,
		},
	})
	if err != nil {
		return nil, err
	}
	inst, err := rt.Load(ctx, wasm)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	s := &session{rt: rt, inst: inst, rec: rec}
	if inst.Has(runtime.ExportWindowHandle) {
		if err := inst.SetWindowSize(ctx, opts.width, opts.height); err != nil {
			s.close(ctx)
			return nil, err
		}
	}
	if inst.Has(runtime.ExportInit) {
		if err := inst.Init(ctx); err != nil {
			s.close(ctx)
			return nil, err
		}
	}
	return s, nil
}

func (s *session) close(ctx context.Context) {
	s.inst.Close(ctx)
	s.rt.Close(ctx)
}

func runHeadless(ctx context.Context, a *app, wasm []byte, opts runOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fps := a.v.GetInt(keyFPS)
	if fps <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "fps must be positive")
	}
	s, err := a.startSession(ctx, wasm, out, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	printOps(out, "init", s.rec.Take())
	dt := 1 / float64(fps)
	for i := 0; i < opts.frames; i++ {
		res, err := s.inst.Step(ctx, dt)
		if err != nil {
			return err
		}
		printOps(out, fmt.Sprintf("frame %d: %s", i, res), s.rec.Take())
	}
	return nil
}

func printOps(w io.Writer, label string, ops []host.Op) {
	fmt.Fprintln(w, label)
	for _, op := range ops {
		fmt.Fprintf(w, "  %s\n", formatOp(op))
	}
}

func formatOp(op host.Op) string {
	switch op.Kind {
	case host.OpFillRect:
		r := op.Rect
		return fmt.Sprintf("%s x=%g y=%g w=%d h=%d %s", op.Kind, r.X, r.Y, r.W, r.H, op.Color.CSS())
	case host.OpClear:
		return op.Kind.String()
	default:
		return op.Kind.String() + " " + op.Color.CSS()
	}
}
