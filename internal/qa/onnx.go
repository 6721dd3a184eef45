package qa

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortInit sync.Once
var ortInitErr error

// initRuntime loads the onnxruntime shared library once per process.
func initRuntime(libPath string) error {
	ortInit.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ONNXModel runs an exported QA graph in-process through onnxruntime.
// Sessions are safe for concurrent Run calls.
type ONNXModel struct {
	session *ort.DynamicAdvancedSession
	inputs  []string
}

var _ Model = (*ONNXModel)(nil)

// NewONNXModel opens modelPath. outputs must name the start and end logits, in that order.
func NewONNXModel(modelPath, libPath string, inputs, outputs []string) (*ONNXModel, error) {
	if len(outputs) != 2 {
		return nil, fmt.Errorf("onnx: want 2 outputs (start, end), got %d", len(outputs))
	}
	for _, name := range inputs {
		if _, _, err := inputFor(name, Encoding{}); err != nil {
			return nil, fmt.Errorf("onnx: %w", err)
		}
	}
	if err := initRuntime(libPath); err != nil {
		return nil, fmt.Errorf("onnx: init runtime: %w", err)
	}
	s, err := ort.NewDynamicAdvancedSession(modelPath, inputs, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx: open session %s: %w", modelPath, err)
	}
	return &ONNXModel{session: s, inputs: inputs}, nil
}

// Predict implements Model.
func (m *ONNXModel) Predict(ctx context.Context, enc Encoding) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}
	shape := ort.NewShape(1, int64(enc.Len()))

	values := make([]ort.Value, 0, len(m.inputs)+2)
	defer func() {
		for _, v := range values {
			v.Destroy()
		}
	}()

	inputs := make([]ort.Value, 0, len(m.inputs))
	for _, name := range m.inputs {
		data, fill, err := inputFor(name, enc)
		if err != nil {
			return Scores{}, err
		}
		tensor, err := ort.NewTensor(shape, toInt64(data, enc.Len(), fill))
		if err != nil {
			return Scores{}, fmt.Errorf("tensor %s: %w", name, err)
		}
		values = append(values, tensor)
		inputs = append(inputs, tensor)
	}

	start, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return Scores{}, fmt.Errorf("start tensor: %w", err)
	}
	values = append(values, start)
	end, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return Scores{}, fmt.Errorf("end tensor: %w", err)
	}
	values = append(values, end)

	if err := m.session.Run(inputs, []ort.Value{start, end}); err != nil {
		return Scores{}, fmt.Errorf("run: %w", err)
	}

	return Scores{
		Start: append([]float32(nil), start.GetData()...),
		End:   append([]float32(nil), end.GetData()...),
	}, nil
}

// Close destroys the session.
func (m *ONNXModel) Close() error {
	return m.session.Destroy()
}

// inputFor maps a graph input name to the matching encoding field and the
// value used for positions the tokenizer left empty.
func inputFor(name string, enc Encoding) ([]int, int64, error) {
	switch name {
	case "input_ids":
		return enc.IDs, 0, nil
	case "attention_mask":
		return enc.AttentionMask, 1, nil
	case "token_type_ids":
		return enc.TypeIDs, 0, nil
	default:
		return nil, 0, fmt.Errorf("unsupported model input %q", name)
	}
}

func toInt64(xs []int, n int, fill int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		if i < len(xs) {
			out[i] = int64(xs[i])
		} else {
			out[i] = fill
		}
	}
	return out
}
