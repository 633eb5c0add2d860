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

// Command cortex is the CLI for the interactive computation backend.
//
// Usage:
//
//	cortex serve --config config.yaml
//	cortex kernel-info --addr localhost:8080 --notebook <id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/arborly/cortex/pkg/appconfig"
	"github.com/arborly/cortex/pkg/httpserver"
	"github.com/arborly/cortex/pkg/logging"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve      ServeCmd      `cmd:"" help:"Start the notebook HTTP+SSE server."`
	KernelInfo KernelInfoCmd `cmd:"" name:"kernel-info" help:"Print a notebook's JSON (cells and outputs) from a running server."`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
}

// ServeCmd starts the HTTP+SSE server.
type ServeCmd struct {
	Config string `short:"c" help:"Path to YAML config file." default:"config.yaml" type:"path"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	logger := logging.Init(logging.ParseLevel(cli.LogLevel), os.Stderr)

	cfg, err := appconfig.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	srv, err := httpserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		srv.Close()
	}
	return nil
}

// KernelInfoCmd fetches a notebook's JSON document (its cells and their
// outputs) from a running server and prints it, for operator inspection
// without attaching a debugger to the process. It does not report the
// kernel's variable bindings.
type KernelInfoCmd struct {
	Addr     string `help:"Server address." default:"localhost:8080"`
	Notebook string `help:"Notebook id to inspect." required:""`
}

func (c *KernelInfoCmd) Run(cli *CLI) error {
	url := fmt.Sprintf("http://%s/v1/notebooks/%s", c.Addr, c.Notebook)
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("fetch notebook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var nb map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&nb); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(nb)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cortex"),
		kong.Description("Interactive computation backend: notebooks, kernels, and a streaming ReAct agent."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
