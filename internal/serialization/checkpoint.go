package serialization

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Format identifies digitnet checkpoints in the metadata.
const Format = "digitnet-checkpoint"

// CheckpointInfo is the metadata stored alongside model weights.
type CheckpointInfo struct {
	RunID     uuid.UUID
	Epoch     int
	MeanLoss  float64
	Arch      string // layer sizes, e.g. "64-32-16-10"
	Output    string // output mode of the final layer
	Mean      float64
	Std       float64
	CreatedAt time.Time
}

// SaveCheckpoint writes a model state dict and its run metadata to path.
func SaveCheckpoint(path string, state map[string]*tensor.Tensor, info CheckpointInfo) error {
	meta := map[string]string{
		"format":     Format,
		"run_id":     info.RunID.String(),
		"epoch":      strconv.Itoa(info.Epoch),
		"mean_loss":  strconv.FormatFloat(info.MeanLoss, 'g', -1, 64),
		"arch":       info.Arch,
		"output":     info.Output,
		"mean":       strconv.FormatFloat(info.Mean, 'g', -1, 64),
		"std":        strconv.FormatFloat(info.Std, 'g', -1, 64),
		"created_at": info.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := WriteFile(path, state, meta); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (map[string]*tensor.Tensor, CheckpointInfo, error) {
	state, meta, err := ReadFile(path)
	if err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if meta["format"] != Format {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: %s is not a digitnet checkpoint (format %q)", path, meta["format"])
	}

	var info CheckpointInfo
	if info.RunID, err = uuid.Parse(meta["run_id"]); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: run_id: %w", err)
	}
	if info.Epoch, err = strconv.Atoi(meta["epoch"]); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: epoch: %w", err)
	}
	if info.MeanLoss, err = strconv.ParseFloat(meta["mean_loss"], 64); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: mean_loss: %w", err)
	}
	if info.Mean, err = strconv.ParseFloat(meta["mean"], 64); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: mean: %w", err)
	}
	if info.Std, err = strconv.ParseFloat(meta["std"], 64); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: std: %w", err)
	}
	if info.CreatedAt, err = time.Parse(time.RFC3339, meta["created_at"]); err != nil {
		return nil, CheckpointInfo{}, fmt.Errorf("load checkpoint: created_at: %w", err)
	}
	info.Arch = meta["arch"]
	info.Output = meta["output"]
	return state, info, nil
}
