package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/utils"
)

// HTTPSolver calls an out-of-process inference service (the ONNX captcha
// model served over HTTP): POST the PNG bytes, get back a JSON body with the
// recognized text.
type HTTPSolver struct {
	endpoint string
	client   *http.Client
}

type solveResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewHTTPSolver builds a solver against the given inference endpoint.
func NewHTTPSolver(endpoint string, timeout time.Duration) *HTTPSolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSolver) Solve(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to build solver request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("solver request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read solver response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("solver returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed solveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode solver response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("solver error: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", fmt.Errorf("solver returned an empty answer")
	}
	return text, nil
}
