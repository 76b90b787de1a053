// Command deskstress rebuilds the desk model in a loop and appends one
// results line per build to a TSV file.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ice-rage/DeskPlugin-sub000/pkg/config"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/desk"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/drafting"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/stress"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	n := flag.Int("n", 0, "number of builds (0 runs until interrupted)")
	out := flag.String("out", "desk-stress.tsv", "results file, appended to")
	flag.StringVar(&cfg.Preset, "preset", cfg.Preset, "JSON5 parameter preset")
	flag.StringVar(&cfg.Kernel, "kernel", cfg.Kernel, "geometry kernel: memory or sdfx")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite document path (empty keeps the model in memory)")
	flag.Parse()

	log.Logger = cfg.Logger(os.Stderr)

	p, err := cfg.Parameters()
	if err != nil {
		log.Fatal().Err(err).Msg("load parameters")
	}
	if problems := p.Validate(); len(problems) > 0 {
		for _, v := range problems {
			log.Error().Str("parameter", v.Name.String()).Int("value", v.Value).Msg(v.Message)
		}
		log.Fatal().Int("invalid", len(problems)).Msg("parameters out of range")
	}

	k, err := cfg.NewKernel()
	if err != nil {
		log.Fatal().Err(err).Msg("select kernel")
	}
	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		log.Fatal().Err(err).Msg("open document store")
	}
	defer closeStore()

	f, err := os.OpenFile(*out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal().Err(err).Msg("open results file")
	}
	defer f.Close()

	d := drafting.New(k, store, drafting.WithLogger(log.Logger), drafting.WithModelName(cfg.ModelName))
	b := desk.NewBuilder(d, log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("n", *n).Str("kernel", cfg.Kernel).Str("out", *out).Msg("starting")
	done, err := stress.Run(ctx, stress.Options{
		Iterations: *n,
		Build: func(ctx context.Context) error {
			_, err := b.BuildDesk(ctx, p)
			return err
		},
		Out: stress.NewWriter(f),
		Log: log.Logger,
	})
	if err != nil {
		log.Error().Err(err).Int("completed", done).Msg("stress run failed")
		return
	}
	log.Info().Int("completed", done).Msg("done")
}
