package fnn

import (
	"fmt"
	"strings"

	"github.com/born-ml/backprop/internal/backend/cpu"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ActivationType selects the activation of a Dense layer.
type ActivationType int

const (
	ActivationReLU ActivationType = iota
	ActivationELU
	ActivationSoftmax
	ActivationTanH
	ActivationSigmoid
	ActivationLinear
	ActivationNone // identity, same as ActivationLinear
)

var activationNames = []string{"relu", "elu", "softmax", "tanh", "sigmoid", "linear", "none"}

func (a ActivationType) String() string { return enumString("ActivationType", activationNames, int(a)) }

// MarshalYAML encodes the activation by name.
func (a ActivationType) MarshalYAML() (any, error) { return marshalEnum("activation", activationNames, int(a)) }

// UnmarshalYAML decodes an activation name.
func (a *ActivationType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "activation", activationNames, (*int)(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a ActivationType) MarshalText() ([]byte, error) { return marshalText("activation", activationNames, int(a)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActivationType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "activation", activationNames, (*int)(a))
}

func (a ActivationType) nn() nn.Activation {
	switch a {
	case ActivationReLU:
		return nn.ActivationReLU
	case ActivationELU:
		return nn.ActivationELU
	case ActivationSoftmax:
		return nn.ActivationSoftmax
	case ActivationTanH:
		return nn.ActivationTanh
	case ActivationSigmoid:
		return nn.ActivationSigmoid
	default:
		return nn.ActivationLinear
	}
}

// LossType selects the loss layer appended by Fit.
type LossType int

const (
	LossCCE LossType = iota // categorical cross-entropy
	LossMSE                 // mean squared error
)

var lossNames = []string{"cce", "mse"}

func (l LossType) String() string { return enumString("LossType", lossNames, int(l)) }

// MarshalYAML encodes the loss by name.
func (l LossType) MarshalYAML() (any, error) { return marshalEnum("loss", lossNames, int(l)) }

// UnmarshalYAML decodes a loss name.
func (l *LossType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "loss", lossNames, (*int)(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l LossType) MarshalText() ([]byte, error) { return marshalText("loss", lossNames, int(l)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LossType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "loss", lossNames, (*int)(l))
}

// OptimizerType selects the optimizer created by Fit.
type OptimizerType int

const (
	OptimizerGradientDescent OptimizerType = iota
	OptimizerAdam
)

var optimizerNames = []string{"gd", "adam"}

func (o OptimizerType) String() string { return enumString("OptimizerType", optimizerNames, int(o)) }

// MarshalYAML encodes the optimizer by name.
func (o OptimizerType) MarshalYAML() (any, error) {
	return marshalEnum("optimizer", optimizerNames, int(o))
}

// UnmarshalYAML decodes an optimizer name.
func (o *OptimizerType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "optimizer", optimizerNames, (*int)(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o OptimizerType) MarshalText() ([]byte, error) { return marshalText("optimizer", optimizerNames, int(o)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OptimizerType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "optimizer", optimizerNames, (*int)(o))
}

// InitType selects the weight initialization scheme.
type InitType int

const (
	InitAuto InitType = iota // Kaiming for ReLU layers, Xavier otherwise
	InitKaiming
	InitXavier
)

var initNames = []string{"auto", "kaiming", "xavier"}

func (i InitType) String() string { return enumString("InitType", initNames, int(i)) }

// MarshalYAML encodes the scheme by name.
func (i InitType) MarshalYAML() (any, error) { return marshalEnum("init", initNames, int(i)) }

// UnmarshalYAML decodes a scheme name.
func (i *InitType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "init", initNames, (*int)(i))
}

// MarshalText implements encoding.TextMarshaler.
func (i InitType) MarshalText() ([]byte, error) { return marshalText("init", initNames, int(i)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *InitType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "init", initNames, (*int)(i))
}

func (i InitType) nn() nn.InitKind {
	switch i {
	case InitKaiming:
		return nn.InitKaiming
	case InitXavier:
		return nn.InitXavier
	default:
		return nn.InitAuto
	}
}

// DistributionType selects the distribution weights are drawn from.
type DistributionType int

const (
	DistributionNormal DistributionType = iota
	DistributionUniform
)

var distributionNames = []string{"normal", "uniform"}

func (d DistributionType) String() string {
	return enumString("DistributionType", distributionNames, int(d))
}

// MarshalYAML encodes the distribution by name.
func (d DistributionType) MarshalYAML() (any, error) {
	return marshalEnum("distribution", distributionNames, int(d))
}

// UnmarshalYAML decodes a distribution name.
func (d *DistributionType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "distribution", distributionNames, (*int)(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DistributionType) MarshalText() ([]byte, error) { return marshalText("distribution", distributionNames, int(d)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DistributionType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "distribution", distributionNames, (*int)(d))
}

func (d DistributionType) nn() nn.Distribution {
	if d == DistributionUniform {
		return nn.Uniform
	}
	return nn.Normal
}

// ParallelizationLevel selects how Fit spreads a batch over goroutines.
type ParallelizationLevel int

const (
	// Sequential runs every example of a batch on the master model.
	Sequential ParallelizationLevel = iota
	// ThreadPerDataEntry runs every example of a batch as its own task on a
	// worker copy of the model.
	ThreadPerDataEntry
	// ThreadPerDataBatch splits a batch into one contiguous shard per worker.
	ThreadPerDataBatch
)

var parallelizationNames = []string{"sequential", "thread_per_data_entry", "thread_per_data_batch"}

func (p ParallelizationLevel) String() string {
	return enumString("ParallelizationLevel", parallelizationNames, int(p))
}

// MarshalYAML encodes the level by name.
func (p ParallelizationLevel) MarshalYAML() (any, error) {
	return marshalEnum("parallelization", parallelizationNames, int(p))
}

// UnmarshalYAML decodes a level name.
func (p *ParallelizationLevel) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "parallelization", parallelizationNames, (*int)(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p ParallelizationLevel) MarshalText() ([]byte, error) { return marshalText("parallelization", parallelizationNames, int(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ParallelizationLevel) UnmarshalText(text []byte) error {
	return unmarshalText(text, "parallelization", parallelizationNames, (*int)(p))
}

// KernelType selects the kernel strategy of the CPU backend.
type KernelType int

const (
	KernelSequential KernelType = iota
	KernelThreaded
	KernelVectorized
)

var kernelNames = []string{"sequential", "threaded", "vectorized"}

func (k KernelType) String() string { return enumString("KernelType", kernelNames, int(k)) }

// MarshalYAML encodes the kernel strategy by name.
func (k KernelType) MarshalYAML() (any, error) { return marshalEnum("kernels", kernelNames, int(k)) }

// UnmarshalYAML decodes a kernel strategy name.
func (k *KernelType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalEnum(node, "kernels", kernelNames, (*int)(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k KernelType) MarshalText() ([]byte, error) { return marshalText("kernels", kernelNames, int(k)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *KernelType) UnmarshalText(text []byte) error {
	return unmarshalText(text, "kernels", kernelNames, (*int)(k))
}

func (k KernelType) backend() *cpu.CPUBackend {
	switch k {
	case KernelThreaded:
		return cpu.NewWithStrategy(cpu.Threaded)
	case KernelVectorized:
		return cpu.NewWithStrategy(cpu.Vectorized)
	default:
		return cpu.New()
	}
}

func enumString(typ string, names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", typ, v)
	}
	return names[v]
}

func marshalEnum(kind string, names []string, v int) (any, error) {
	if v < 0 || v >= len(names) {
		return nil, errors.Errorf("unknown %s %d", kind, v)
	}
	return names[v], nil
}

func unmarshalEnum(node *yaml.Node, kind string, names []string, dst *int) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return errors.Wrapf(err, "line %d: %s", node.Line, kind)
	}
	v, err := parseEnum(kind, names, s)
	if err != nil {
		return errors.WithMessagef(err, "line %d", node.Line)
	}
	*dst = v
	return nil
}

func marshalText(kind string, names []string, v int) ([]byte, error) {
	name, err := marshalEnum(kind, names, v)
	if err != nil {
		return nil, err
	}
	return []byte(name.(string)), nil
}

func unmarshalText(text []byte, kind string, names []string, dst *int) error {
	v, err := parseEnum(kind, names, string(text))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseEnum(kind string, names []string, s string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for i, name := range names {
		if name == key {
			return i, nil
		}
	}
	return 0, errors.Errorf("unknown %s %q, want one of %s", kind, s, strings.Join(names, ", "))
}
