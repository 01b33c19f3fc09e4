package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/backend/cpu"
	"github.com/born-ml/digitnet/internal/config"
	"github.com/born-ml/digitnet/internal/dataset"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/serialization"
	"github.com/born-ml/digitnet/internal/train"
)

func runTrain(ctx context.Context, args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (built-in defaults when empty)")
	dataDir := fs.String("data-dir", "", "Directory holding the MNIST IDX files")
	synthetic := fs.Bool("synthetic", false, "Train on generated 8x8 digit prototypes instead of MNIST")
	maxSamples := fs.Int("max-samples", 0, "Limit the number of training samples")
	epochs := fs.Int("epochs", 0, "Number of epochs")
	batchSize := fs.Int("batch-size", 0, "Batch size")
	optimizer := fs.String("optimizer", "", "Optimizer: sgd or adam")
	lr := fs.Float64("lr", 0, "Learning rate")
	seed := fs.Uint64("seed", 0, "PRNG seed")
	logEvery := fs.Int("log-every", 0, "Log every N batches")
	checkpoint := fs.String("checkpoint", "", "Write model weights here after every epoch")
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
		Epochs:     *epochs,
		BatchSize:  *batchSize,
		Optimizer:  *optimizer,
		LR:         *lr,
		Seed:       *seed,
		LogEvery:   *logEvery,
		Checkpoint: *checkpoint,
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	runID := uuid.New()
	logBanner(logger, runID)
	_, err = trainModel(ctx, cfg, runID, logger)
	return err
}

// trainModel runs a full training session described by cfg and returns the
// per-epoch history.
func trainModel(ctx context.Context, cfg *config.Config, runID uuid.UUID, logger *log.Logger) (train.History, error) {
	full, err := loadDataset(cfg, true)
	if err != nil {
		return nil, err
	}
	trainSet, valSet := full.Split(cfg.ValidationSplit)
	stats := normalization(cfg, trainSet)
	if err := trainSet.Normalize(stats); err != nil {
		return nil, err
	}
	valCount := 0
	if valSet != nil {
		if err := valSet.Normalize(stats); err != nil {
			return nil, err
		}
		valCount = valSet.Len()
	}
	logger.Printf("data synthetic=%t train=%d val=%d features=%d mean=%.4f std=%.4f",
		cfg.Synthetic, trainSet.Len(), valCount, trainSet.Features(), stats.Mean, stats.Std)

	output, err := nn.ParseOutputMode(cfg.Output)
	if err != nil {
		return nil, err
	}
	mlp := nn.MLPConfig{
		InFeatures: trainSet.Features(),
		Hidden:     cfg.Hidden,
		Classes:    trainSet.Classes,
		Output:     output,
	}
	backend := autodiff.New(cpu.New())
	model := nn.NewMLP(mlp, backend, newRNG(cfg.Seed))
	opt := newOptimizer(cfg, model.Parameters())
	logger.Printf("model arch=%s output=%s params=%d optimizer=%s lr=%g backend=%s",
		archString(mlp), output, nn.CountParameters(model), cfg.Optimizer, opt.LR(), backend.Name())

	loader, err := dataset.NewLoader(trainSet, dataset.LoaderConfig{BatchSize: cfg.BatchSize, Shuffle: true, Seed: cfg.Seed})
	if err != nil {
		return nil, err
	}
	var valLoader *dataset.Loader
	if valSet != nil {
		if valLoader, err = dataset.NewLoader(valSet, dataset.LoaderConfig{BatchSize: cfg.BatchSize}); err != nil {
			return nil, err
		}
	}

	var trainer *train.Trainer
	onEpoch := func(s train.EpochStats) error {
		if valLoader != nil {
			ev, err := trainer.Evaluate(ctx, valLoader)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			logger.Printf("epoch=%d val_loss=%.4f val_acc=%.4f", s.Epoch, ev.MeanLoss, ev.Accuracy)
		}
		if cfg.Checkpoint == "" {
			return nil
		}
		return serialization.SaveCheckpoint(cfg.Checkpoint, model.StateDict(), serialization.CheckpointInfo{
			RunID:     runID,
			Epoch:     s.Epoch,
			MeanLoss:  s.MeanLoss,
			Arch:      archString(mlp),
			Output:    string(output),
			Mean:      stats.Mean,
			Std:       stats.Std,
			CreatedAt: time.Now(),
		})
	}

	trainer, err = train.New(model, nn.LossFor(output, backend), opt, backend, train.Config{
		LogEvery: cfg.LogEvery,
		Logger:   logger,
		OnEpoch:  onEpoch,
	})
	if err != nil {
		return nil, err
	}

	history, err := trainer.Train(ctx, loader, cfg.Epochs)
	if err != nil {
		return history, err
	}
	if last, ok := history.Last(); ok {
		logger.Printf("run_id=%s done epochs=%d loss=%.4f acc=%.4f", runID, last.Epoch, last.MeanLoss, last.Accuracy)
	}
	return history, nil
}
