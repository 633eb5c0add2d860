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

// Package logging sets up the process-wide slog logger.
//
// Third-party library logs are noisy at anything above debug, so the
// default handler filters any record whose call site isn't under this
// module's import path once the level is above debug.
package logging

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

const modulePrefix = "github.com/arborly/cortex"

// ParseLevel converts a level name ("debug", "info", "warn", "error") to
// a slog.Level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// quietThirdParty wraps a handler so that, above debug, only records
// emitted from this module's own call sites pass through.
type quietThirdParty struct {
	next     slog.Handler
	minLevel slog.Level
}

func (h *quietThirdParty) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *quietThirdParty) Handle(ctx context.Context, record slog.Record) error {
	if h.minLevel <= slog.LevelDebug || h.fromThisModule(record.PC) {
		return h.next.Handle(ctx, record)
	}
	return nil
}

func (h *quietThirdParty) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &quietThirdParty{next: h.next.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *quietThirdParty) WithGroup(name string) slog.Handler {
	return &quietThirdParty{next: h.next.WithGroup(name), minLevel: h.minLevel}
}

func (h *quietThirdParty) fromThisModule(pc uintptr) bool {
	if pc == 0 {
		return false
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(pc)
	return strings.Contains(fn.Name(), modulePrefix) || strings.Contains(file, "cortex/")
}

// Init installs the process-wide slog default logger at the given level,
// writing structured text to w.
func Init(level slog.Level, w *os.File) *slog.Logger {
	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(&quietThirdParty{next: base, minLevel: level})
	slog.SetDefault(logger)
	return logger
}
