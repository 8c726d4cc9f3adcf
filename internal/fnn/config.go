package fnn

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LayerDescriptor describes one Dense layer.
type LayerDescriptor struct {
	Name       string         `yaml:"name,omitempty"`
	Size       int            `yaml:"size"`
	Activation ActivationType `yaml:"activation"`
}

// Config describes a feed-forward network and how to train it.
// The zero value of every field is a usable default.
type Config struct {
	Name      string            `yaml:"name,omitempty"`
	InputSize int               `yaml:"input_size"`
	Layers    []LayerDescriptor `yaml:"layers"`

	Loss          LossType         `yaml:"loss"`
	LossTolerance float64          `yaml:"loss_tolerance,omitempty"` // MSE only (default: nn.DefaultLossTolerance)
	Optimizer     OptimizerType    `yaml:"optimizer"`
	Init          InitType         `yaml:"init"`
	Distribution  DistributionType `yaml:"distribution"`
	Kernels       KernelType       `yaml:"kernels"`

	Parallelization ParallelizationLevel `yaml:"parallelization"`
	Workers         int                  `yaml:"workers,omitempty"` // default: GOMAXPROCS
	Seed            uint64               `yaml:"seed,omitempty"`    // 0 draws from system entropy
	ShowProgress    bool                 `yaml:"show_progress,omitempty"`
}

// Validate checks the descriptor sizes.
func (c Config) Validate() error {
	if c.InputSize <= 0 {
		return errors.Errorf("config %q: input_size must be positive, got %d", c.Name, c.InputSize)
	}
	if len(c.Layers) == 0 {
		return errors.Errorf("config %q: no layers", c.Name)
	}
	for i, l := range c.Layers {
		if l.Size <= 0 {
			return errors.Errorf("config %q: layer %d size must be positive, got %d", c.Name, i, l.Size)
		}
	}
	if c.Workers < 0 {
		return errors.Errorf("config %q: negative worker count %d", c.Name, c.Workers)
	}
	return nil
}

// LoadConfig decodes a YAML network descriptor. Unknown keys are errors.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode network config")
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a YAML network descriptor from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to open network config")
	}
	defer f.Close()
	return LoadConfig(f)
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "failed to encode network config")
}
