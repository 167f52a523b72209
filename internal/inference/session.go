package inference

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// Initialize loads the ONNX Runtime shared library and sets up the
// environment (call once at startup). Repeated calls are no-ops.
func Initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	ort.SetSharedLibraryPath(libraryPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime from %s: %w", libraryPath, err)
	}

	initialized = true
	return nil
}

// Initialized reports whether the runtime environment is ready
func Initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}

// Shutdown cleans up ONNX Runtime environment
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Options tunes session creation
type Options struct {
	// IntraOpThreads caps the threads used inside one operator, 0 keeps the runtime default
	IntraOpThreads int
	// CoreML requests the CoreML execution provider, falling back to CPU when unavailable
	CoreML bool
}

// Session wraps an ONNX Runtime inference session
type Session struct {
	session     *ort.DynamicAdvancedSession
	modelPath   string
	inputNames  []string
	outputNames []string
}

// NewSession creates a new inference session from an ONNX model
func NewSession(modelPath string, inputNames, outputNames []string, opts Options, log logrus.FieldLogger) (*Session, error) {
	if !Initialized() {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if opts.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
		}
	}

	provider := "cpu"
	if opts.CoreML {
		// Flag 0 = default settings, use Neural Engine + GPU
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			log.WithField("model", modelPath).WithError(err).Warn("CoreML unavailable, using CPU")
		} else {
			provider = "coreml"
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	log.WithFields(logrus.Fields{
		"model":    modelPath,
		"provider": provider,
	}).Info("Inference session ready")

	return &Session{
		session:     session,
		modelPath:   modelPath,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// Run executes inference with the given inputs
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	return s.session.Run(inputs, outputs)
}

// Destroy releases session resources
func (s *Session) Destroy() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

// CreateTensor creates a tensor with the given shape and data
func CreateTensor[T ort.TensorData](shape []int64, data []T) (*ort.Tensor[T], error) {
	return ort.NewTensor(ort.NewShape(shape...), data)
}

// CreateEmptyTensor creates an uninitialized tensor for output
func CreateEmptyTensor[T ort.TensorData](shape []int64) (*ort.Tensor[T], error) {
	size := int64(1)
	for _, dim := range shape {
		size *= dim
	}
	data := make([]T, size)
	return ort.NewTensor(ort.NewShape(shape...), data)
}

// Tensor describes one model input or output
type Tensor struct {
	Name       string
	DataType   string
	Dimensions []int64
}

// ModelInfo summarizes a model's interface and metadata
type ModelInfo struct {
	Path        string
	Producer    string
	Domain      string
	Description string
	Version     int64
	Inputs      []Tensor
	Outputs     []Tensor
}

// Inspect reads input/output names, shapes and metadata from a model file
// without creating a session
func Inspect(modelPath string) (*ModelInfo, error) {
	if !Initialized() {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model info for %s: %w", modelPath, err)
	}

	info := &ModelInfo{
		Path:    modelPath,
		Inputs:  describe(inputs),
		Outputs: describe(outputs),
	}

	metadata, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata for %s: %w", modelPath, err)
	}
	defer metadata.Destroy()

	// Metadata fields are optional in ONNX files
	info.Producer, _ = metadata.GetProducerName()
	info.Domain, _ = metadata.GetDomain()
	info.Description, _ = metadata.GetDescription()
	info.Version, _ = metadata.GetVersion()

	return info, nil
}

func describe(infos []ort.InputOutputInfo) []Tensor {
	tensors := make([]Tensor, 0, len(infos))
	for _, io := range infos {
		tensors = append(tensors, Tensor{
			Name:       io.Name,
			DataType:   fmt.Sprint(io.DataType),
			Dimensions: []int64(io.Dimensions),
		})
	}
	return tensors
}
