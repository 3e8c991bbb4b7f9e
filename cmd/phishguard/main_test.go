package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote answers like an analysis service that knows nothing bad.
func fakeRemote(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/check_blocked"):
			_, _ = w.Write([]byte(`{"is_blocked":0}`))
		case strings.HasSuffix(r.URL.Path, "/evaluate"):
			_, _ = w.Write([]byte(`{"decision":"SAFE","reason":"no indicators"}`))
		case strings.HasSuffix(r.URL.Path, "/global-info"):
			_, _ = w.Write([]byte(`{}`))
		case strings.HasSuffix(r.URL.Path, "/my-blocked-urls"):
			_, _ = w.Write([]byte(`{"urls":["http://mine.example/"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REMOTE_BASE_URL", fakeRemote(t).URL)
	t.Setenv("KV_BACKEND", "memory")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", t.TempDir() + "/none.env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestIDCommand(t *testing.T) {
	out, err := run(t, "id")
	require.NoError(t, err)
	_, err = uuid.Parse(strings.TrimSpace(out))
	assert.NoError(t, err)
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", "https://fine.example/")
	require.NoError(t, err)
	assert.Contains(t, out, `"SAFE"`)
	assert.Contains(t, out, "no indicators")
}

func TestCheckCommandRefusesNonHTTP(t *testing.T) {
	out, err := run(t, "check", "chrome://settings")
	require.Error(t, err)
	assert.Contains(t, out, "invalid_input")
}

func TestBlockedList(t *testing.T) {
	out, err := run(t, "blocked", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "http://mine.example/")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "phishguard version "))
}
