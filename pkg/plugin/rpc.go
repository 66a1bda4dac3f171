package plugin

import (
	"context"
	"errors"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// AnalyzerRPC implements the go-plugin Plugin interface for analyzers.
type AnalyzerRPC struct {
	plugin.Plugin
	Impl Analyzer
}

// Server returns an RPC server for this plugin.
func (p *AnalyzerRPC) Server(*plugin.MuxBroker) (any, error) {
	return &AnalyzerRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *AnalyzerRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &AnalyzerRPCClient{client: c}, nil
}

// AnalyzerRPCServer is the RPC server implementation for analyzers.
type AnalyzerRPCServer struct {
	Impl Analyzer
}

// Analyse implements the RPC method for image analysis.
func (s *AnalyzerRPCServer) Analyse(req AnalyseRequest, resp *Report) error {
	report, err := s.Impl.Analyse(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = report
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *AnalyzerRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// AnalyzerRPCClient is the RPC client implementation for analyzers.
type AnalyzerRPCClient struct {
	client *rpc.Client
}

// Analyse calls the remote Analyse method. Cancelling ctx abandons the call;
// the plugin process itself is stopped by the executor.
func (c *AnalyzerRPCClient) Analyse(ctx context.Context, req AnalyseRequest) (Report, error) {
	var report Report
	call := c.client.Go("Plugin.Analyse", req, &report, nil)

	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case <-call.Done:
	}

	if call.Error != nil {
		return Report{}, toRPCError(call.Error)
	}
	return report, nil
}

// GetMetadata calls the remote GetMetadata method. It returns the zero
// PluginInfo if the call fails.
func (c *AnalyzerRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}

// RPCError represents an error returned by the plugin side of an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

func toRPCError(err error) error {
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		return &RPCError{Message: string(serverErr)}
	}
	return err
}
