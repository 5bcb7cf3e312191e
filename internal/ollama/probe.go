// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultHost is the address the ollama server listens on out of the box.
// The IPv4 literal avoids localhost resolving to ::1 first on Windows.
const DefaultHost = "http://127.0.0.1:11434"

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo is one entry of the server's installed model list.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details,omitempty"`
}

// ModelDetails holds the parts of the model metadata worth showing.
type ModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

// FormatSize returns the model size in human-readable form.
func (m ModelInfo) FormatSize() string {
	return humanize.IBytes(uint64(m.Size))
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

type versionResponse struct {
	Version string `json:"version"`
}

// =============================================================================
// PROBE
// =============================================================================

// Probe asks a running ollama server about itself. Chat requests never go
// through it; they are made by the Runner through the command line. Probe
// exists for the doctor command, to tell "ollama is missing" apart from
// "the server is down" and "the model has not been pulled".
type Probe struct {
	host       string
	httpClient *http.Client
}

// NewProbe creates a Probe for host, falling back to DefaultHost.
func NewProbe(host string, timeout time.Duration) *Probe {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Host returns the base URL being probed.
func (p *Probe) Host() string {
	return p.host
}

// Version returns the server version string.
func (p *Probe) Version(ctx context.Context) (string, error) {
	var result versionResponse
	if err := p.getJSON(ctx, "/api/version", &result); err != nil {
		return "", err
	}
	return result.Version, nil
}

// ListModels returns the models installed on the server.
func (p *Probe) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var result listModelsResponse
	if err := p.getJSON(ctx, "/api/tags", &result); err != nil {
		return nil, err
	}
	return result.Models, nil
}

// FindModel looks name up in the installed list. A name without a tag
// matches ":latest", the way "ollama run" resolves it.
func (p *Probe) FindModel(ctx context.Context, name string) (*ModelInfo, error) {
	models, err := p.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	want := name
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for i := range models {
		if models[i].Name == want || models[i].Name == name {
			return &models[i], nil
		}
	}
	return nil, nil
}

func (p *Probe) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+path, nil)
	if err != nil {
		return &RunError{Type: ErrTypeNotRunning, Message: "invalid ollama host " + p.host, Cause: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &RunError{Type: ErrTypeCanceled, Message: "probe canceled", Cause: err}
		}
		return &RunError{Type: ErrTypeNotRunning, Message: "ollama server not reachable at " + p.host, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RunError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from ollama: " + resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RunError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
