package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"

	"github.com/born-ml/digitnet/internal/config"
	"github.com/born-ml/digitnet/internal/dataset"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/optim"
)

func logBanner(logger *log.Logger, runID uuid.UUID) {
	logger.Printf("digitnet version=%s run_id=%s", version, runID)
	logger.Printf("cpu=%q cores=%d threads=%d avx2=%t fma3=%t avx512=%t",
		cpuid.CPU.BrandName,
		cpuid.CPU.PhysicalCores,
		cpuid.CPU.LogicalCores,
		cpuid.CPU.Supports(cpuid.AVX2),
		cpuid.CPU.Supports(cpuid.FMA3),
		cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
	)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadDataset returns the raw (unnormalized) dataset selected by cfg: the
// synthetic digits, or the MNIST train or test split from cfg.DataDir. The
// synthetic test split redraws the noise around the training prototypes.
func loadDataset(cfg *config.Config, trainSplit bool) (*dataset.Dataset, error) {
	if !cfg.Synthetic {
		return dataset.LoadMNIST(cfg.DataDir, trainSplit, cfg.MaxSamples)
	}
	sc := dataset.DefaultSyntheticConfig()
	sc.Seed = cfg.Seed
	if !trainSplit {
		sc.NoiseStream = 1
	}
	ds := dataset.Synthetic(sc)
	if cfg.MaxSamples > 0 && cfg.MaxSamples < ds.Len() {
		ds = ds.Subset(0, cfg.MaxSamples)
	}
	return ds, nil
}

// normalization picks the pixel statistics: computed from ds for synthetic
// data or when requested, the configured pair otherwise.
func normalization(cfg *config.Config, ds *dataset.Dataset) dataset.Stats {
	if cfg.Synthetic || cfg.ComputeStats {
		return dataset.ComputeStats(ds)
	}
	return dataset.Stats{Mean: cfg.Mean, Std: cfg.Std}
}

func newOptimizer(cfg *config.Config, params []*nn.Parameter) optim.Optimizer {
	if cfg.Optimizer == "adam" {
		return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LR})
	}
	return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

// archString encodes layer sizes as "in-h1-...-classes".
func archString(cfg nn.MLPConfig) string {
	parts := []string{strconv.Itoa(cfg.InFeatures)}
	for _, h := range cfg.Hidden {
		parts = append(parts, strconv.Itoa(h))
	}
	parts = append(parts, strconv.Itoa(cfg.Classes))
	return strings.Join(parts, "-")
}

func parseArch(arch string, output nn.OutputMode) (nn.MLPConfig, error) {
	fields := strings.Split(arch, "-")
	if len(fields) < 2 {
		return nn.MLPConfig{}, fmt.Errorf("arch %q needs at least input and output sizes", arch)
	}
	sizes := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nn.MLPConfig{}, fmt.Errorf("arch %q: bad layer size %q", arch, f)
		}
		sizes[i] = n
	}
	return nn.MLPConfig{
		InFeatures: sizes[0],
		Hidden:     sizes[1 : len(sizes)-1],
		Classes:    sizes[len(sizes)-1],
		Output:     output,
	}, nil
}
