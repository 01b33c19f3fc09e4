package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/backend/cpu"
	"github.com/born-ml/digitnet/internal/config"
	"github.com/born-ml/digitnet/internal/dataset"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/optim"
	"github.com/born-ml/digitnet/internal/serialization"
	"github.com/born-ml/digitnet/internal/train"
)

func runEval(ctx context.Context, args []string, out io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (built-in defaults when empty)")
	checkpoint := fs.String("checkpoint", "", "Checkpoint written by digitnet train")
	dataDir := fs.String("data-dir", "", "Directory holding the MNIST IDX files")
	synthetic := fs.Bool("synthetic", false, "Evaluate on the generated 8x8 digit prototypes")
	maxSamples := fs.Int("max-samples", 0, "Limit the number of evaluation samples")
	seed := fs.Uint64("seed", 0, "Seed of the synthetic dataset")
	show := fs.Int("show", 10, "Number of individual predictions to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		DataDir:    *dataDir,
		Synthetic:  *synthetic,
		MaxSamples: *maxSamples,
		Seed:       *seed,
		Checkpoint: *checkpoint,
	})
	if cfg.Checkpoint == "" {
		return fmt.Errorf("eval needs -checkpoint")
	}

	rep, err := evaluateCheckpoint(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return rep.write(out, *show)
}

func evaluateCheckpoint(ctx context.Context, cfg *config.Config, logger *log.Logger) (*report, error) {
	state, info, err := serialization.LoadCheckpoint(cfg.Checkpoint)
	if err != nil {
		return nil, err
	}
	output, err := nn.ParseOutputMode(info.Output)
	if err != nil {
		return nil, err
	}
	mlp, err := parseArch(info.Arch, output)
	if err != nil {
		return nil, err
	}
	logger.Printf("checkpoint run_id=%s epoch=%d loss=%.4f arch=%s", info.RunID, info.Epoch, info.MeanLoss, info.Arch)

	ds, err := loadDataset(cfg, false)
	if err != nil {
		return nil, err
	}
	if ds.Features() != mlp.InFeatures {
		return nil, fmt.Errorf("checkpoint expects %d features, data has %d", mlp.InFeatures, ds.Features())
	}
	if err := ds.Normalize(dataset.Stats{Mean: info.Mean, Std: info.Std}); err != nil {
		return nil, err
	}

	backend := autodiff.New(cpu.New())
	model := nn.NewMLP(mlp, backend, newRNG(0))
	if err := model.LoadStateDict(state); err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}

	// The optimizer is never stepped; Trainer requires one.
	trainer, err := train.New(model, nn.LossFor(output, backend), optim.NewSGD(model.Parameters(), optim.SGDConfig{}), backend, train.Config{})
	if err != nil {
		return nil, err
	}
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 256})
	if err != nil {
		return nil, err
	}
	stats, err := trainer.Evaluate(ctx, loader)
	if err != nil {
		return nil, err
	}
	preds, err := trainer.Predict(ds.Images)
	if err != nil {
		return nil, err
	}
	return newReport(stats, preds, ds.Labels, ds.Classes), nil
}
