// Package main provides the Coheq DSP Framework CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/coheq-dsp/coheq/af"
	"github.com/coheq-dsp/coheq/cx"
	"github.com/coheq-dsp/coheq/equalize"
	"github.com/coheq-dsp/coheq/modem"
	"github.com/coheq-dsp/coheq/sched"
	"github.com/coheq-dsp/coheq/trace"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Coheq DSP Framework %s\n", version)
			return
		case "demo":
			if err := runDemo(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Coheq DSP Framework - Adaptive Equalization & Carrier Recovery for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Equalize a synthetic two-polarization signal")
}

// runDemo sends random QPSK symbols through a polarization rotation and
// recovers them with the selected blind equalizer, optionally streaming
// the loss trace into SQLite.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	algo := fs.String("algo", "cma", "equalizer: cma, mucma, rde or ddlms")
	n := fs.Int("n", 4000, "number of symbols")
	taps := fs.Int("taps", 19, "filter taps")
	theta := fs.Float64("theta", 0.2, "channel rotation in radians")
	lr := fs.Float64("lr", 5e-4, "learning rate")
	seed := fs.Int64("seed", 1, "PRNG seed")
	db := fs.String("db", "", "optional SQLite trace database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 10 {
		return fmt.Errorf("need at least 10 symbols, got %d", *n)
	}

	set, err := modem.Const("QPSK")
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	y := cx.ZerosMatrix(*n, 2)
	cs, sn := complex(math.Cos(*theta), 0), complex(math.Sin(*theta), 0)
	for r := 0; r < *n; r++ {
		a := set[rng.Intn(len(set))]
		b := set[rng.Intn(len(set))]
		y.Set(r, 0, cs*a+sn*b)
		y.Set(r, 1, -sn*a+cs*b)
	}

	blocks, err := equalize.FrameSignal(y, *taps, 1, -1)
	if err != nil {
		return err
	}
	frames, err := equalize.MakeFrames(blocks, nil, nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var rec trace.Recorder = trace.NewMemory()
	if *db != "" {
		store := trace.NewSQLiteStore(*db)
		if err := store.Init(ctx); err != nil {
			return err
		}
		defer store.Close()
		run, err := store.StartRun(ctx, *algo)
		if err != nil {
			return err
		}
		fmt.Printf("recording trace to %s (run %s)\n", *db, run.ID)
		rec = run
	}
	defer rec.Close()

	losses := make([]float64, 0, *n)
	record := func(step int, loss float64, payload []byte) error {
		losses = append(losses, loss)
		return rec.Record(ctx, trace.Entry{Step: step, Loss: loss, Payload: payload})
	}

	var final *cx.Tensor
	switch *algo {
	case "cma":
		eq, err := equalize.NewCMA(equalize.CMAConfig{Taps: *taps, LR: sched.Constant(*lr), Const: set})
		if err != nil {
			return err
		}
		s0, err := eq.Init()
		if err != nil {
			return err
		}
		_, st, err := af.FoldSink[*equalize.CMAState, equalize.Frame, equalize.CMAOut](
			eq, 0, s0, frames, func(step int, out equalize.CMAOut) error {
				return record(step, out.Loss, nil)
			})
		if err != nil {
			return err
		}
		final = st.W
	case "mucma":
		eq, err := equalize.NewMUCMA(equalize.MUCMAConfig{Taps: *taps, LR: sched.Constant(*lr), Const: set})
		if err != nil {
			return err
		}
		s0, err := eq.Init()
		if err != nil {
			return err
		}
		_, st, err := af.FoldSink[*equalize.MUCMAState, equalize.Frame, equalize.MUCMAOut](
			eq, 0, s0, frames, func(step int, out equalize.MUCMAOut) error {
				return record(step, out.Loss, nil)
			})
		if err != nil {
			return err
		}
		final = st.W
	case "rde":
		eq, err := equalize.NewRDE(equalize.RDEConfig{Taps: *taps, LR: sched.Constant(*lr), Const: set})
		if err != nil {
			return err
		}
		s0, err := eq.Init()
		if err != nil {
			return err
		}
		_, st, err := af.FoldSink[*equalize.RDEState, equalize.Frame, equalize.RDEOut](
			eq, 0, s0, frames, func(step int, out equalize.RDEOut) error {
				return record(step, out.Loss, nil)
			})
		if err != nil {
			return err
		}
		final = st.W
	case "ddlms":
		eq, err := equalize.NewDDLMS(equalize.DDLMSConfig{
			Taps:  *taps,
			LRW:   sched.Constant(*lr),
			Init:  equalize.InitCentralSpike,
			Const: set,
		})
		if err != nil {
			return err
		}
		s0, err := eq.Init()
		if err != nil {
			return err
		}
		_, st, err := af.FoldSink[*equalize.DDLMSState, equalize.Frame, equalize.DDLMSOut](
			eq, 0, s0, frames, func(step int, out equalize.DDLMSOut) error {
				return record(step, out.Loss, nil)
			})
		if err != nil {
			return err
		}
		final = st.W
	default:
		return fmt.Errorf("unknown equalizer %q", *algo)
	}

	payload, err := trace.EncodeWeights(final)
	if err != nil {
		return err
	}
	if err := rec.Record(ctx, trace.Entry{Step: len(losses), Loss: losses[len(losses)-1], Payload: payload}); err != nil {
		return err
	}

	window := len(losses) / 10
	fmt.Printf("%s: %d steps, loss %.4f -> %.4f\n",
		*algo, len(losses), mean(losses[:window]), mean(losses[len(losses)-window:]))
	return nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
