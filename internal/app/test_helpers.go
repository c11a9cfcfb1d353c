package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteManifests writes name -> content pairs below a fresh temporary
// directory and returns the directory.
func WriteManifests(t *testing.T, manifests map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range manifests {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

// SetupAppTest creates a new app instance for system testing. Paths default
// to dir when the config names none.
func SetupAppTest(t *testing.T, cfg Config, dir string) (*App, *SafeBuffer) {
	t.Helper()

	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{dir}
	}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := NewApp(logBuffer, validated, nil)

	t.Cleanup(func() {
		if os.Getenv("PYSLOTGEN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
