package welcome

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-message", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Ada", in["name"])

		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Hello Ada!"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	msg, err := c.Generate(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", msg)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
		{"empty message", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"message":"  "}`))
		}},
		{"missing field", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), "Ada")
			assert.Error(t, err)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, 50*time.Millisecond).Generate(context.Background(), "Ada")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Generate(context.Background(), "Ada")
	assert.Error(t, err)
}

func TestGenerate_Disabled(t *testing.T) {
	_, err := NewClient("", time.Second).Generate(context.Background(), "Ada")
	assert.ErrorIs(t, err, ErrDisabled)

	var nilClient *Client
	_, err = nilClient.Generate(context.Background(), "Ada")
	assert.ErrorIs(t, err, ErrDisabled)
}
