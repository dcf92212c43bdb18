package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/vk/configo/registry"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
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

// SetupAppTest creates an App on fs with debug logging captured in a buffer.
// It returns the app, its command output and its log output.
func SetupAppTest(t *testing.T, cfg *Config, fs afero.Fs, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer, logBuffer := &SafeBuffer{}, &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(outBuffer, logBuffer, cfg, fs, modules...)

	t.Cleanup(func() {
		if os.Getenv("CONFIGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
