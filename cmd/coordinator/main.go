// Command coordinator runs one PET federated-learning coordinator
// process: config load, logger construction, and subsystem wiring, then
// hands off to pet/lifecycle for the actual run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xaynet-labs/pet-coordinator/config"
	"github.com/xaynet-labs/pet-coordinator/lifecycle"
	"github.com/xaynet-labs/pet-coordinator/logging"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the coordinator's TOML config file (empty uses built-in defaults)")
	modelDir := flag.String("model-dir", "", "directory to persist global models in (empty keeps them in memory only)")
	modelLen := flag.Int("model-length", 0, "model vector length, a deployment constant fixed by the model being trained")
	group := flag.Int("mask-group", int(mask.GroupInteger), "mask group: 0=integer, 1=power-of-two")
	data := flag.Int("mask-data", int(mask.DataF32), "mask data type: 0=f32, 1=f64, 2=i32, 3=i64")
	bound := flag.Int("mask-bound", int(mask.BoundB0), "mask bound class (0-3)")
	modelPrec := flag.Int("mask-model", int(mask.ModelM3), "mask model precision class (0-5)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coordinator: %v\n", err)
		return 1
	}

	log := logging.New("pet-coordinator")

	store, err := buildStore(*modelDir)
	if err != nil {
		log.Error("coordinator: building model store", "error", err)
		return 1
	}

	maskCfg := mask.Config{
		Group: mask.GroupType(*group),
		Data:  mask.DataType(*data),
		Bound: mask.BoundType(*bound),
		Model: mask.ModelType(*modelPrec),
	}

	coord, err := lifecycle.New(cfg, maskCfg, *modelLen, store, log)
	if err != nil {
		log.Error("coordinator: building lifecycle", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT)
	defer stop()

	code := coord.Run(ctx)
	if code == 0 && ctx.Err() != nil {
		// ctx was canceled by the SIGINT handler rather than by a normal
		// caller-driven shutdown; report that distinctly per the exit
		// code table rather than the generic graceful 0.
		return 130
	}
	return code
}

func buildStore(dir string) (model.Store, error) {
	if dir == "" {
		return model.NewMemoryStore(), nil
	}
	return model.NewFileStore(dir)
}
