// Package executor runs analyzer plugins regardless of their underlying
// protocol (go-plugin RPC or JSON-stdio) and returns their swatch reports.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/spraydex/internal/plugin/protocol"
	"github.com/jmylchreest/spraydex/internal/swatch"
	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// DefaultTimeout bounds a single Analyse call.
const DefaultTimeout = 2 * time.Minute

// Executor runs one analyzer binary.
type Executor struct {
	path    string
	info    protocol.DetectorResult
	logger  hclog.Logger
	runner  ProcessRunner
	timeout time.Duration

	mu        sync.Mutex
	client    *goplugin.Client
	rpcClient *plugin.AnalyzerRPCClient
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for the executor and the go-plugin client.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRunner replaces the process runner used for detection and json-stdio calls.
func WithRunner(runner ProcessRunner) Option {
	return func(e *Executor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// New creates an Executor by querying the plugin's --plugin-info.
func New(ctx context.Context, pluginPath string, opts ...Option) (*Executor, error) {
	e := &Executor{
		path:    pluginPath,
		logger:  hclog.NewNullLogger(),
		runner:  NewRealProcessRunner(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	detectCtx, cancel := context.WithTimeout(ctx, protocol.DetectTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(detectCtx, pluginPath, []string{plugin.PluginInfoFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin %s: %w%s", pluginPath, err, stderrSuffix(stderr))
	}

	result, err := protocol.ParsePluginInfo(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}
	e.info = *result

	e.logger.Debug("analyzer detected",
		"path", pluginPath,
		"name", result.PluginInfo.Name,
		"version", result.PluginInfo.Version,
		"protocol", result.Type)

	return e, nil
}

// Info returns the metadata reported by the plugin.
func (e *Executor) Info() plugin.PluginInfo {
	return e.info.PluginInfo
}

// Protocol returns the detected protocol type.
func (e *Executor) Protocol() plugin.PluginType {
	return e.info.Type
}

// Analyse runs the analyzer and returns its report.
func (e *Executor) Analyse(ctx context.Context, req plugin.AnalyseRequest) (swatch.Report, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		report swatch.Report
		err    error
	)
	switch e.info.Type {
	case protocol.PluginTypeGoPlugin:
		report, err = e.analyseGoPlugin(ctx, req)
	case protocol.PluginTypeJSON:
		report, err = e.analyseJSON(ctx, req)
	default:
		return swatch.Report{}, fmt.Errorf("unsupported protocol type: %s", e.info.Type)
	}
	if err != nil {
		return swatch.Report{}, fmt.Errorf("analyzer %s: %w", e.info.PluginInfo.Name, err)
	}

	e.logger.Debug("analysis complete", "image", req.ImagePath, "duration", time.Since(start))
	return report, nil
}

// Close stops the plugin process, if one is running.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// --- Go-Plugin RPC implementation ---

func (e *Executor) getRPCClient() (*plugin.AnalyzerRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.AnalyzerPluginName: &plugin.AnalyzerRPC{},
		},
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger.Named("plugin"),
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.AnalyzerPluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*plugin.AnalyzerRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("unexpected plugin client type %T", raw)
	}
	e.rpcClient = client

	return client, nil
}

func (e *Executor) analyseGoPlugin(ctx context.Context, req plugin.AnalyseRequest) (swatch.Report, error) {
	client, err := e.getRPCClient()
	if err != nil {
		return swatch.Report{}, err
	}

	report, err := client.Analyse(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		// The plugin may still be working; a fresh process is started next time.
		e.Close()
	}
	return report, err
}

// --- JSON-stdio implementation ---

func (e *Executor) analyseJSON(ctx context.Context, req plugin.AnalyseRequest) (swatch.Report, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(reqJSON))
	if err != nil {
		return swatch.Report{}, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}
	if len(stderr) > 0 {
		e.logger.Trace("analyzer stderr", "output", strings.TrimSpace(string(stderr)))
	}

	report, err := swatch.ParseReport(bytes.NewReader(stdout))
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to parse plugin output: %w", err)
	}
	return report, nil
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return "\nStderr: " + msg
}
