// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"0.5.7"}`))
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[
			{"name":"deepseek-r1:14b","size":9019431936,"details":{"family":"qwen2","parameter_size":"14.8B","quantization_level":"Q4_K_M"}},
			{"name":"llama3:latest","size":4661224676}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProbe_Host(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultHost},
		{"  ", DefaultHost},
		{"127.0.0.1:11434", "http://127.0.0.1:11434"},
		{"http://gpu-box:11434/", "http://gpu-box:11434"},
	}

	for _, tc := range tests {
		if got := NewProbe(tc.in, 0).Host(); got != tc.want {
			t.Errorf("NewProbe(%q).Host() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProbe_Version(t *testing.T) {
	srv := newTestServer(t)

	v, err := NewProbe(srv.URL, time.Second).Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.5.7", v)
}

func TestProbe_FindModel(t *testing.T) {
	srv := newTestServer(t)
	p := NewProbe(srv.URL, time.Second)

	m, err := p.FindModel(context.Background(), "deepseek-r1:14b")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "14.8B", m.Details.ParameterSize)
	require.Equal(t, "8.4 GiB", m.FormatSize())

	m, err = p.FindModel(context.Background(), "llama3")
	require.NoError(t, err)
	require.NotNil(t, m, "untagged name should match :latest")

	m, err = p.FindModel(context.Background(), "mistral")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestProbe_NotRunning(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	_, err := NewProbe(url, time.Second).ListModels(context.Background())
	require.True(t, IsNotRunning(err), "got %v", err)
}

func TestProbe_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewProbe(srv.URL, time.Second).Version(context.Background())
	require.True(t, hasType(err, ErrTypeInvalidResponse), "got %v", err)
}
