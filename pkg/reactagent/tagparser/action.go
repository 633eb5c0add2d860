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

package tagparser

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// parseAction JSON-decodes an <action> body of the shape
// {"tool": NAME, "input": {...}}.
func parseAction(content string) (Action, error) {
	var a Action
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return Action{}, fmt.Errorf("parse action json: %w", err)
	}
	if a.Tool == "" {
		return Action{}, fmt.Errorf("action missing \"tool\" key")
	}
	return a, nil
}

var bareActionRe = regexp.MustCompile(`(?s)\{(?:[^{}]|\{[^{}]*\})*\}`)

// ExtractBareAction is the stream-end recovery path: if a bare JSON
// object with a "tool" key appears anywhere in an unterminated response,
// treat it as the action the model meant to emit. The object may contain
// one level of nested objects (such as its "input"); objects nested
// deeper than that are not matched.
func ExtractBareAction(text string) (Action, bool) {
	for _, match := range bareActionRe.FindAllString(text, -1) {
		if a, err := parseAction(match); err == nil {
			return a, true
		}
	}
	return Action{}, false
}
