package executor

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"
)

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// InfoOutput is returned for --plugin-info queries.
	InfoOutput []byte

	// RunFunc handles every other invocation.
	RunFunc func(ctx context.Context, stdin []byte) (stdout, stderr []byte, err error)

	// ShouldTimeout blocks analysis calls until the context is cancelled.
	ShouldTimeout bool

	mu        sync.Mutex
	calls     int
	lastStdin []byte
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, _ string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	if slices.Contains(args, "--plugin-info") {
		return m.InfoOutput, nil, nil
	}

	var in []byte
	if stdin != nil {
		in, _ = io.ReadAll(stdin)
	}

	m.mu.Lock()
	m.calls++
	m.lastStdin = in
	m.mu.Unlock()

	if m.ShouldTimeout {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(10 * time.Second):
		}
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, in)
	}
	return []byte("{}"), nil, nil
}

func (m *MockProcessRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProcessRunner) LastStdin() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastStdin
}

const jsonStdioInfo = `{"name": "mock", "type": "analyzer", "version": "0.1.0", "protocol_version": "1.0.0", "plugin_protocol": "json-stdio"}`

// NewJSONMockProcessRunner creates a json-stdio analyzer that prints stdout.
func NewJSONMockProcessRunner(stdout string) *MockProcessRunner {
	return &MockProcessRunner{
		InfoOutput: []byte(jsonStdioInfo),
		RunFunc: func(context.Context, []byte) ([]byte, []byte, error) {
			return []byte(stdout), nil, nil
		},
	}
}
