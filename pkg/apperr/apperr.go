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

// Package apperr defines the error-kind taxonomy shared by tools, the
// agent loop, and the SSE bridge. Every error that can reach a caller is
// tagged with a Kind so callers can switch on it instead of parsing
// messages.
package apperr

import "fmt"

// Kind is a closed set of error categories surfaced across the service.
type Kind string

const (
	AuthorizationRequired Kind = "authorization_required"
	InvalidInput          Kind = "invalid_input"
	ToolNotFound          Kind = "tool_not_found"
	ToolTimeout           Kind = "tool_timeout"
	ToolExternal          Kind = "tool_external"
	ParserFormat          Kind = "parser_format"
	LLMStream             Kind = "llm_stream"
	KernelExec            Kind = "kernel_exec"
	ResourceNotFound      Kind = "resource_not_found"
	BlockedDomain         Kind = "blocked_domain"
	PackagesNotAllowed    Kind = "packages_not_allowed"
	Internal              Kind = "internal"
)

// Error wraps an underlying error with a Kind and a caller-facing message.
// The message never contains a stack trace; it is safe to serialize.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind of err, defaulting to Internal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if err == nil {
		return ""
	}
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return Internal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
