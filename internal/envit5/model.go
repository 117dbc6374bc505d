// Package envit5 loads the VietAI envit5-translation ONNX export and runs
// beam-search generation over its encoder and decoder sessions.
package envit5

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// DefaultModelName is reported on /health when no override is set.
	DefaultModelName = "VietAI/envit5-translation"
	// DefaultBeamWidth matches the width the model card recommends.
	DefaultBeamWidth = 4
)

// Config configures Load.
type Config struct {
	ModelDir   string
	ModelName  string
	Device     string // "", "auto", "cpu" or "cuda"
	BeamWidth  int
	ORTLibPath string
	Probe      CapabilityProbe
	Logger     *zerolog.Logger
}

// Model is the loaded runtime handle: tokenizer, encoder and decoder
// sessions, and the generation parameters read from the model directory.
// It is created once at startup and shared for the process lifetime.
type Model struct {
	mu     sync.RWMutex
	closed bool

	name   string
	device Device
	params modelParams
	width  int

	tok     *textTokenizer
	encoder *ort.DynamicAdvancedSession
	decoder *ort.DynamicAdvancedSession

	encInputNames  []string
	encOutputNames []string
	decInputNames  []string
	decOutputNames []string

	zlog *zerolog.Logger
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// ensureRuntime initializes the ONNX Runtime environment once per process.
// The environment stays alive until exit; Close only destroys sessions.
func ensureRuntime(libPath string) error {
	ortInitOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if !ort.IsInitialized() {
			ortInitErr = ort.InitializeEnvironment()
		}
	})
	return ortInitErr
}

// Load resolves the model directory, reads its artifacts and builds the
// encoder and decoder sessions. Any missing or unreadable artifact is fatal.
func Load(cfg Config) (*Model, error) {
	dir, err := ResolveModelDir(cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	arts, err := locateArtifacts(dir)
	if err != nil {
		return nil, err
	}
	params, err := loadModelParams(dir)
	if err != nil {
		return nil, err
	}
	tok, err := loadTokenizer(arts.TokenizerPath)
	if err != nil {
		return nil, err
	}

	if err := ensureRuntime(cfg.ORTLibPath); err != nil {
		return nil, fmt.Errorf("initializing onnxruntime: %w", err)
	}

	probe := cfg.Probe
	if probe == nil {
		probe = NewSystemProbe()
	}
	device, err := ResolveDevice(cfg.Device, probe)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer opts.Destroy()

	if device == DeviceCUDA {
		if err := appendCUDA(opts); err != nil {
			if cfg.Device == string(DeviceCUDA) {
				return nil, fmt.Errorf("enabling CUDA execution provider: %w", err)
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn().Err(err).Msg("CUDA execution provider unavailable, falling back to cpu")
			}
			device = DeviceCPU
		}
	}

	encIn, encOut, err := sessionIONames(arts.EncoderPath)
	if err != nil {
		return nil, err
	}
	decIn, decOut, err := sessionIONames(arts.DecoderPath)
	if err != nil {
		return nil, err
	}

	encoder, err := ort.NewDynamicAdvancedSession(arts.EncoderPath, encIn, encOut, opts)
	if err != nil {
		return nil, fmt.Errorf("creating encoder session: %w", err)
	}
	decoder, err := ort.NewDynamicAdvancedSession(arts.DecoderPath, decIn, decOut, opts)
	if err != nil {
		encoder.Destroy()
		return nil, fmt.Errorf("creating decoder session: %w", err)
	}

	name := cfg.ModelName
	if name == "" {
		name = DefaultModelName
	}
	width := cfg.BeamWidth
	if width <= 0 {
		width = DefaultBeamWidth
	}

	m := &Model{
		name:           name,
		device:         device,
		params:         params,
		width:          width,
		tok:            tok,
		encoder:        encoder,
		decoder:        decoder,
		encInputNames:  encIn,
		encOutputNames: encOut,
		decInputNames:  decIn,
		decOutputNames: decOut,
		zlog:           cfg.Logger,
	}
	if m.zlog != nil {
		m.zlog.Info().
			Str("model_dir", dir).
			Str("model", name).
			Str("device", string(device)).
			Int("beam_width", width).
			Msg("model loaded")
	}
	return m, nil
}

func appendCUDA(opts *ort.SessionOptions) error {
	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return err
	}
	defer cudaOpts.Destroy()
	if err := cudaOpts.Update(map[string]string{"device_id": "0"}); err != nil {
		return err
	}
	return opts.AppendExecutionProviderCUDA(cudaOpts)
}

func sessionIONames(path string) (inputs, outputs []string, err error) {
	in, out, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, nil, fmt.Errorf("inspecting %s: %w", filepath.Base(path), err)
	}
	for _, i := range in {
		inputs = append(inputs, i.Name)
	}
	for _, o := range out {
		outputs = append(outputs, o.Name)
	}
	return inputs, outputs, nil
}

// outputIndex returns the position of want among names, or 0 so callers fall
// back to the first output.
func outputIndex(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return 0
}

// Device reports the execution provider the model runs on.
func (m *Model) Device() string { return string(m.device) }

// ModelName reports the configured model identifier.
func (m *Model) ModelName() string { return m.name }

// Generate runs the full encode, beam search, decode pass over input.
// maxLength bounds the generated sequence in tokens, counting the decoder
// start token; zero or negative means the model config's max_length.
func (m *Model) Generate(ctx context.Context, input string, maxLength int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", fmt.Errorf("model is closed")
	}
	if maxLength <= 0 {
		maxLength = m.params.MaxLength
	}

	ids, err := m.tok.encode(input)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("tokenizer produced no tokens")
	}

	states, shape, err := m.runEncoder(ids)
	if err != nil {
		return "", err
	}

	tokens, err := m.beamSearch(ctx, states, shape, maxLength)
	if err != nil {
		return "", err
	}
	return m.tok.decode(tokens[1:]), nil
}

// runEncoder produces encoder hidden states for one input sequence. The
// returned data is copied out so it outlives the ORT tensors.
func (m *Model) runEncoder(ids []int64) ([]float32, []int64, error) {
	seqLen := int64(len(ids))
	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), ids)
	if err != nil {
		return nil, nil, fmt.Errorf("building input_ids tensor: %w", err)
	}
	defer inputTensor.Destroy()
	maskTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), mask)
	if err != nil {
		return nil, nil, fmt.Errorf("building attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inputs := make([]ort.Value, len(m.encInputNames))
	for i, name := range m.encInputNames {
		switch name {
		case "input_ids":
			inputs[i] = inputTensor
		case "attention_mask":
			inputs[i] = maskTensor
		default:
			return nil, nil, fmt.Errorf("unsupported encoder input %q", name)
		}
	}

	outputs := make([]ort.Value, len(m.encOutputNames))
	if err := m.encoder.Run(inputs, outputs); err != nil {
		return nil, nil, fmt.Errorf("running encoder: %w", err)
	}
	defer destroyAll(outputs)

	t, ok := outputs[outputIndex(m.encOutputNames, "last_hidden_state")].(*ort.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("encoder output is not float32")
	}
	states := append([]float32(nil), t.GetData()...)
	shape := append([]int64(nil), t.GetShape()...)
	if len(shape) != 3 {
		return nil, nil, fmt.Errorf("unexpected encoder output shape %v", shape)
	}
	return states, shape, nil
}

// beamSearch decodes with a fixed beam width until enough hypotheses end in
// EOS or maxLength is reached.
func (m *Model) beamSearch(ctx context.Context, encStates []float32, encShape []int64, maxLength int) ([]int64, error) {
	width := m.width
	active := []beam{{tokens: []int64{m.params.DecoderStartTokenID}}}
	var finished []beam

	for len(finished) < width && len(active) > 0 && len(active[0].tokens) < maxLength {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := m.runDecoderStep(active, encStates, encShape)
		if err != nil {
			return nil, err
		}
		cands := make([][]candidate, len(active))
		for i, row := range rows {
			cands[i] = topKLogits(row, width+1)
		}
		var done []beam
		active, done = stepBeams(active, cands, m.params.EOSTokenID, width)
		finished = append(finished, done...)
	}

	// Length-capped hypotheses still compete for the final pick.
	finished = append(finished, active...)
	if len(finished) == 0 {
		return nil, fmt.Errorf("beam search produced no hypotheses")
	}
	return pickBest(finished).tokens, nil
}

// runDecoderStep evaluates the decoder over all active beams at once and
// returns the last-position logits row per beam.
func (m *Model) runDecoderStep(active []beam, encStates []float32, encShape []int64) ([][]float32, error) {
	k := len(active)
	steps := len(active[0].tokens)
	flat := make([]int64, 0, k*steps)
	for _, b := range active {
		flat = append(flat, b.tokens...)
	}

	encSeqLen := encShape[1]
	hidden := encShape[2]

	// The encoder ran with batch size 1; tile its states across beams.
	tiled := make([]float32, 0, k*len(encStates))
	for i := 0; i < k; i++ {
		tiled = append(tiled, encStates...)
	}
	encMask := make([]int64, k*int(encSeqLen))
	for i := range encMask {
		encMask[i] = 1
	}

	created := make([]ort.Value, 0, len(m.decInputNames))
	defer func() { destroyAll(created) }()

	inputs := make([]ort.Value, len(m.decInputNames))
	for i, name := range m.decInputNames {
		var t ort.Value
		var err error
		switch name {
		case "input_ids", "decoder_input_ids":
			t, err = ort.NewTensor(ort.NewShape(int64(k), int64(steps)), flat)
		case "encoder_hidden_states", "encoder_outputs":
			t, err = ort.NewTensor(ort.NewShape(int64(k), encSeqLen, hidden), tiled)
		case "encoder_attention_mask":
			t, err = ort.NewTensor(ort.NewShape(int64(k), encSeqLen), encMask)
		default:
			return nil, fmt.Errorf("unsupported decoder input %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s tensor: %w", name, err)
		}
		created = append(created, t)
		inputs[i] = t
	}

	outputs := make([]ort.Value, len(m.decOutputNames))
	if err := m.decoder.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running decoder: %w", err)
	}
	defer destroyAll(outputs)

	lt, ok := outputs[outputIndex(m.decOutputNames, "logits")].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("decoder logits are not float32")
	}
	data := lt.GetData()
	shape := lt.GetShape()
	vocab := int(shape[len(shape)-1])

	rows := make([][]float32, k)
	for i := 0; i < k; i++ {
		start := i*steps*vocab + (steps-1)*vocab
		row := make([]float32, vocab)
		copy(row, data[start:start+vocab])
		rows[i] = row
	}
	return rows, nil
}

func destroyAll(vals []ort.Value) {
	for _, v := range vals {
		if v != nil {
			v.Destroy()
		}
	}
}

// Close destroys the ONNX sessions. Further Generate calls fail.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	if m.encoder != nil {
		if err := m.encoder.Destroy(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing encoder: %w", err)
		}
		m.encoder = nil
	}
	if m.decoder != nil {
		if err := m.decoder.Destroy(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing decoder: %w", err)
		}
		m.decoder = nil
	}
	return firstErr
}
