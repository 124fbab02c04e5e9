// Package training describes LoRA fine-tuning jobs. Training itself runs on
// a GPU host outside this service; the package's job is to produce the job
// file that host consumes.
package training

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Job is a complete fine-tuning job description.
type Job struct {
	BaseModel    string  `yaml:"base_model"`
	DataPath     string  `yaml:"data_path"`
	OutputDir    string  `yaml:"output_dir"`
	MaxSeqLength int     `yaml:"max_seq_length"`
	LoadIn4Bit   bool    `yaml:"load_in_4bit"`
	LoRA         LoRA    `yaml:"lora"`
	Optim        Optim   `yaml:"optim"`
	MaxSteps     int     `yaml:"max_steps"`
	Seed         int     `yaml:"seed"`
	LearningRate float64 `yaml:"learning_rate"`
}

// LoRA is the adapter shape.
type LoRA struct {
	Rank    int     `yaml:"rank"`
	Alpha   int     `yaml:"alpha"`
	Dropout float64 `yaml:"dropout"`
}

// Optim is the optimizer schedule.
type Optim struct {
	BatchSize            int     `yaml:"per_device_batch_size"`
	GradientAccumulation int     `yaml:"gradient_accumulation_steps"`
	WarmupSteps          int     `yaml:"warmup_steps"`
	WeightDecay          float64 `yaml:"weight_decay"`
	LRSchedulerType      string  `yaml:"lr_scheduler_type"`
}

// NewJob returns a job with the tuned defaults for the movie analyst
// adapter. dataPath points at the preprocessed JSONL training file.
func NewJob(dataPath string) Job {
	return Job{
		BaseModel:    "unsloth/Qwen2.5-1.5B-Instruct",
		DataPath:     dataPath,
		OutputDir:    "outputs",
		MaxSeqLength: 2048,
		LoadIn4Bit:   true,
		LoRA: LoRA{
			Rank:    16,
			Alpha:   32,
			Dropout: 0.05,
		},
		Optim: Optim{
			BatchSize:            2,
			GradientAccumulation: 4,
			WarmupSteps:          5,
			WeightDecay:          0.01,
			LRSchedulerType:      "linear",
		},
		MaxSteps:     60,
		Seed:         3407,
		LearningRate: 2e-4,
	}
}

// Validate rejects jobs a trainer cannot run.
func (j Job) Validate() error {
	if j.BaseModel == "" {
		return fmt.Errorf("base model cannot be empty")
	}
	if j.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if j.MaxSeqLength <= 0 {
		return fmt.Errorf("max sequence length must be positive: %d", j.MaxSeqLength)
	}
	if j.LoRA.Rank <= 0 {
		return fmt.Errorf("lora rank must be positive: %d", j.LoRA.Rank)
	}
	if j.LoRA.Alpha <= 0 {
		return fmt.Errorf("lora alpha must be positive: %d", j.LoRA.Alpha)
	}
	if j.LoRA.Dropout < 0 || j.LoRA.Dropout >= 1 {
		return fmt.Errorf("lora dropout out of range: %f", j.LoRA.Dropout)
	}
	if j.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive: %d", j.MaxSteps)
	}
	if j.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive: %f", j.LearningRate)
	}
	return nil
}

// WriteYAML validates the job and writes it to path, creating parent
// directories as needed.
func (j Job) WriteYAML(path string) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid training job: %w", err)
	}

	raw, err := yaml.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal training job: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write training job: %w", err)
	}
	return nil
}
