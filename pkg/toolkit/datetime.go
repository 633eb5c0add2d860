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

package toolkit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DateTimeArgs is the datetime tool's argument shape.
type DateTimeArgs struct {
	Action string `json:"action" jsonschema:"required,enum=now,enum=date,enum=weekday,enum=timestamp,enum=format,description=Which datetime operation to perform"`
	Format string `json:"format,omitempty" jsonschema:"description=strftime-style format string; defaults to %Y-%m-%d %H:%M:%S"`
}

// NewDateTime builds the datetime tool. Deterministic and
// dependency-free: time/strconv cover every action this spec requires,
// so no third-party date library earns its weight here (see DESIGN.md).
func NewDateTime() Tool {
	return NewFunc[DateTimeArgs]("datetime",
		"Get the current date/time in various forms: now, date, weekday, timestamp, or a custom strftime format.",
		func(ctx context.Context, args DateTimeArgs) Result {
			now := time.Now()
			switch args.Action {
			case "now":
				return Ok(now.Format("2006-01-02 15:04:05"), nil)
			case "date":
				return Ok(now.Format("2006-01-02"), nil)
			case "weekday":
				return Ok(now.Weekday().String(), nil)
			case "timestamp":
				return Ok(fmt.Sprintf("%d", now.Unix()), map[string]any{"timestamp": now.Unix()})
			case "format":
				pattern := args.Format
				if pattern == "" {
					pattern = "%Y-%m-%d %H:%M:%S"
				}
				return Ok(now.Format(strftimeToGo(pattern)), nil)
			default:
				return Fail("invalid_input", fmt.Sprintf("unknown datetime action %q", args.Action))
			}
		})
}

var strftimeDirectives = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "01", 'd': "02",
	'H': "15", 'M': "04", 'S': "05",
	'B': "January", 'b': "Jan", 'A': "Monday", 'a': "Mon",
	'p': "PM", 'Z': "MST",
}

// strftimeToGo translates a (small, commonly used) subset of strftime
// directives into Go's reference-time layout syntax.
func strftimeToGo(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '%' && i+1 < len(pattern) {
			if layout, ok := strftimeDirectives[pattern[i+1]]; ok {
				b.WriteString(layout)
				i++
				continue
			}
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}
