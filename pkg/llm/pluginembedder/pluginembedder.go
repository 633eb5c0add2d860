// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pluginembedder lets an operator swap knowledge_search's
// embedding call for an out-of-process provider (a proprietary
// embedding model the operator doesn't want linked into this binary)
// without touching pkg/llm, by launching a HashiCorp go-plugin gRPC
// subprocess and satisfying llm.Embedder over the wire.
//
// Grounded on the teacher's pkg/plugins/grpc: the host/plugin split,
// handshake config, and GRPCPlugin wrapper shape follow
// plugin_impl.go's LLMProviderPlugin exactly (that file has no
// embedder-plugin wrapper of its own — only LLM and Database — so this
// package supplies the missing Embedder side using the already-generated
// pkg/plugins/grpc/proto Embedder client/server stubs).
package pluginembedder

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"

	pb "github.com/arborly/cortex/pkg/plugins/grpc/proto"
)

// HandshakeConfig mirrors the teacher's plugin handshake so a plugin
// binary built against the teacher's SDK loads unmodified.
var HandshakeConfig = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "HECTOR_PLUGIN",
	MagicCookieValue: "hector_plugin_v1",
}

const embedderPluginKey = "embedder_provider"

// grpcPlugin is the go-plugin GRPCPlugin implementation; GRPCServer is
// unused on the host side (the plugin binary implements it) but must
// exist to satisfy the interface symmetrically, per the teacher's
// LLMProviderPlugin pattern.
type grpcPlugin struct {
	goplugin.NetRPCUnsupportedPlugin
}

func (p *grpcPlugin) GRPCServer(_ *goplugin.GRPCBroker, s *grpc.Server) error {
	return fmt.Errorf("pluginembedder: host does not serve the embedder plugin")
}

func (p *grpcPlugin) GRPCClient(_ context.Context, _ *goplugin.GRPCBroker, conn *grpc.ClientConn) (interface{}, error) {
	return pb.NewEmbedderProviderClient(conn), nil
}

// Embedder is an llm.Embedder backed by a subprocess plugin.
type Embedder struct {
	client *goplugin.Client
	stub   pb.EmbedderProviderClient
}

// New launches the plugin binary at path, performs the handshake, and
// initializes it with config (e.g. API keys the plugin needs).
func New(ctx context.Context, path string, config map[string]string) (*Embedder, error) {
	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         map[string]goplugin.Plugin{embedderPluginKey: &grpcPlugin{}},
		Cmd:             exec.Command(path),
		AllowedProtocols: []goplugin.Protocol{
			goplugin.ProtocolGRPC,
		},
		Logger: hclog.NewNullLogger(),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("connect to embedder plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(embedderPluginKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense embedder plugin: %w", err)
	}
	stub, ok := raw.(pb.EmbedderProviderClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin at %s does not implement EmbedderProvider", path)
	}

	if _, err := stub.Initialize(ctx, &pb.InitializeRequest{Config: config}); err != nil {
		client.Kill()
		return nil, fmt.Errorf("initialize embedder plugin: %w", err)
	}

	return &Embedder{client: client, stub: stub}, nil
}

// Embed satisfies llm.Embedder by delegating to the plugin process.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.stub.Embed(ctx, &pb.EmbedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("plugin embed: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("plugin embed: %s", resp.Error)
	}
	return resp.Vector, nil
}

// Close terminates the plugin subprocess.
func (e *Embedder) Close() {
	e.client.Kill()
}
