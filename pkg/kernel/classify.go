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

package kernel

import "strings"

// disqualifyingPrefixes names leading tokens that mean a line is a
// statement, not a trailing expression eligible for execute_result
// capture.
var disqualifyingPrefixes = []string{
	"import ", "package ", "return", "if ", "if(", "for ", "for(",
	"switch ", "switch(", "func ", "type ", "var ", "const ",
	"defer ", "go ", "select ", "select{", "//", "break", "continue",
}

// splitTrailingExpr splits code into a leading statement block and a
// trailing expression line, following the notebook's "last expression"
// REPL convention. ok is false when the last non-empty line is itself a
// statement (import, control flow, assignment, comment, ...), in which
// case the whole block should run as statements with no captured value.
func splitTrailingExpr(code string) (stmts string, expr string, ok bool) {
	lines := strings.Split(code, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 {
		return "", "", false
	}
	last := strings.TrimSpace(lines[end-1])
	if !isExpressionLine(last) {
		return strings.Join(lines[:end], "\n"), "", false
	}
	if end == 1 {
		return "", last, true
	}
	return strings.Join(lines[:end-1], "\n"), last, true
}

func isExpressionLine(line string) bool {
	if line == "" {
		return false
	}
	for _, p := range disqualifyingPrefixes {
		if strings.HasPrefix(line, p) {
			return false
		}
	}
	if strings.Contains(line, ":=") {
		return false
	}
	if hasAssignmentOperator(line) {
		return false
	}
	return true
}

// hasAssignmentOperator reports whether line contains a `=` or compound
// assignment operator (`+=`, `-=`, ...) that is not part of a comparison
// operator (`==`, `!=`, `<=`, `>=`).
func hasAssignmentOperator(line string) bool {
	compound := []string{"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="}
	for _, op := range compound {
		if strings.Contains(line, op) {
			return true
		}
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		var prev, next byte
		if i > 0 {
			prev = line[i-1]
		}
		if i+1 < len(line) {
			next = line[i+1]
		}
		if prev == '=' || prev == '!' || prev == '<' || prev == '>' || next == '=' {
			continue
		}
		return true
	}
	return false
}
