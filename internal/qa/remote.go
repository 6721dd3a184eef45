package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RemoteConfig configures a model served over the KServe/Triton v2 inference protocol.
type RemoteConfig struct {
	// BaseURL is the inference server root, e.g. http://triton:8000.
	BaseURL string
	// Model is the served model name.
	Model string
	// Inputs and Outputs name the graph tensors; outputs are start then end logits.
	Inputs  []string
	Outputs []string
	// Timeout is the HTTP request timeout (default: 30s).
	Timeout time.Duration
	// Transport overrides the base round tripper; it is always wrapped by otelhttp.
	Transport http.RoundTripper
}

// RemoteModel calls an external inference server. It holds no mutable state.
type RemoteModel struct {
	baseURL string
	model   string
	inputs  []string
	outputs []string
	client  *http.Client
}

var _ Model = (*RemoteModel)(nil)

// NewRemoteModel creates a v2 protocol client.
func NewRemoteModel(cfg RemoteConfig) (*RemoteModel, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote model: base url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("remote model: model name is required")
	}
	if len(cfg.Outputs) != 2 {
		return nil, fmt.Errorf("remote model: want 2 outputs (start, end), got %d", len(cfg.Outputs))
	}
	for _, name := range cfg.Inputs {
		if _, _, err := inputFor(name, Encoding{}); err != nil {
			return nil, fmt.Errorf("remote model: %w", err)
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &RemoteModel{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		inputs:  cfg.Inputs,
		outputs: cfg.Outputs,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
	}, nil
}

type inferTensor struct {
	Name     string  `json:"name"`
	Shape    []int64 `json:"shape"`
	Datatype string  `json:"datatype"`
	Data     []int64 `json:"data"`
}

type inferOutputRequest struct {
	Name string `json:"name"`
}

type inferRequest struct {
	Inputs  []inferTensor        `json:"inputs"`
	Outputs []inferOutputRequest `json:"outputs"`
}

type inferOutput struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	Outputs   []inferOutput `json:"outputs"`
}

func (m *RemoteModel) modelURL(suffix string) string {
	return m.baseURL + "/v2/models/" + url.PathEscape(m.model) + suffix
}

// Predict implements Model.
func (m *RemoteModel) Predict(ctx context.Context, enc Encoding) (Scores, error) {
	n := enc.Len()
	reqBody := inferRequest{
		Outputs: []inferOutputRequest{{Name: m.outputs[0]}, {Name: m.outputs[1]}},
	}
	for _, name := range m.inputs {
		data, fill, err := inputFor(name, enc)
		if err != nil {
			return Scores{}, err
		}
		reqBody.Inputs = append(reqBody.Inputs, inferTensor{
			Name:     name,
			Shape:    []int64{1, int64(n)},
			Datatype: "INT64",
			Data:     toInt64(data, n, fill),
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Scores{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.modelURL("/infer"), bytes.NewReader(body))
	if err != nil {
		return Scores{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Scores{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Scores{}, fmt.Errorf("inference server error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Scores{}, fmt.Errorf("decode response: %w", err)
	}

	byName := make(map[string][]float32, len(out.Outputs))
	for _, o := range out.Outputs {
		byName[o.Name] = o.Data
	}
	start, ok := byName[m.outputs[0]]
	if !ok {
		return Scores{}, fmt.Errorf("response missing output %q", m.outputs[0])
	}
	end, ok := byName[m.outputs[1]]
	if !ok {
		return Scores{}, fmt.Errorf("response missing output %q", m.outputs[1])
	}
	return Scores{Start: start, End: end}, nil
}

// Ready checks the server's model readiness endpoint.
func (m *RemoteModel) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.modelURL("/ready"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model %s not ready (status %d)", m.model, resp.StatusCode)
	}
	return nil
}
