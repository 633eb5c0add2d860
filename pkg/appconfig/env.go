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

package appconfig

import (
	"os"
	"regexp"
	"strings"
)

var (
	reWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	reBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	reSimple      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnv substitutes ${VAR}, ${VAR:-default}, and $VAR references in s
// with values from the process environment.
func expandEnv(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	s = reWithDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := reWithDefault.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok && val != "" {
			return val
		}
		return parts[2]
	})

	s = reBraced.ReplaceAllStringFunc(s, func(match string) string {
		parts := reBraced.FindStringSubmatch(match)
		return os.Getenv(parts[1])
	})

	s = reSimple.ReplaceAllStringFunc(s, func(match string) string {
		parts := reSimple.FindStringSubmatch(match)
		return os.Getenv(parts[1])
	})

	return s
}

// expandTree walks a decoded YAML value (map[string]any / []any / string)
// and expands environment variable references in every string leaf.
func expandTree(v any) any {
	switch t := v.(type) {
	case string:
		return expandEnv(t)
	case map[string]any:
		for k, val := range t {
			t[k] = expandTree(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = expandTree(val)
		}
		return t
	default:
		return v
	}
}
