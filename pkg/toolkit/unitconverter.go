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
)

// UnitConverterArgs is the unit_converter tool's argument shape.
type UnitConverterArgs struct {
	Value float64 `json:"value" jsonschema:"required,description=Numeric value to convert"`
	From  string  `json:"from" jsonschema:"required,description=Source unit"`
	To    string  `json:"to" jsonschema:"required,description=Target unit"`
}

// unitCategory groups units that convert via simple multiplication
// through a shared base unit.
type unitCategory struct {
	name       string
	toBase     map[string]float64
}

var linearCategories = []unitCategory{
	{
		name: "length",
		toBase: map[string]float64{
			"m": 1, "meter": 1, "meters": 1,
			"km": 1000, "kilometer": 1000, "kilometers": 1000,
			"cm": 0.01, "centimeter": 0.01, "centimeters": 0.01,
			"mm": 0.001, "millimeter": 0.001, "millimeters": 0.001,
			"mi": 1609.344, "mile": 1609.344, "miles": 1609.344,
			"yd": 0.9144, "yard": 0.9144, "yards": 0.9144,
			"ft": 0.3048, "foot": 0.3048, "feet": 0.3048,
			"in": 0.0254, "inch": 0.0254, "inches": 0.0254,
		},
	},
	{
		name: "weight",
		toBase: map[string]float64{
			"kg": 1, "kilogram": 1, "kilograms": 1,
			"g": 0.001, "gram": 0.001, "grams": 0.001,
			"mg": 0.000001, "milligram": 0.000001, "milligrams": 0.000001,
			"lb": 0.45359237, "lbs": 0.45359237, "pound": 0.45359237, "pounds": 0.45359237,
			"oz": 0.028349523125, "ounce": 0.028349523125, "ounces": 0.028349523125,
		},
	},
	{
		name: "data_size",
		toBase: map[string]float64{
			"b": 1, "byte": 1, "bytes": 1,
			"kb": 1024, "kilobyte": 1024, "kilobytes": 1024,
			"mb": 1024 * 1024, "megabyte": 1024 * 1024, "megabytes": 1024 * 1024,
			"gb": 1024 * 1024 * 1024, "gigabyte": 1024 * 1024 * 1024, "gigabytes": 1024 * 1024 * 1024,
			"tb": 1024 * 1024 * 1024 * 1024, "terabyte": 1024 * 1024 * 1024 * 1024, "terabytes": 1024 * 1024 * 1024 * 1024,
		},
	},
}

var temperatureUnits = map[string]bool{
	"celsius": true, "c": true, "fahrenheit": true, "f": true,
}

// NewUnitConverter builds the unit_converter tool. Temperature uses the
// affine celsius<->fahrenheit formula rather than multiplication through
// a base unit; every other category multiplies through one.
func NewUnitConverter() Tool {
	return NewFunc[UnitConverterArgs]("unit_converter",
		"Convert a value between units of length, weight, data size, or temperature.",
		func(ctx context.Context, args UnitConverterArgs) Result {
			from, to := normalizeUnit(args.From), normalizeUnit(args.To)

			if temperatureUnits[from] || temperatureUnits[to] {
				if !temperatureUnits[from] || !temperatureUnits[to] {
					return Fail("category_mismatch", "cannot convert between temperature and a non-temperature unit")
				}
				v, err := convertTemperature(args.Value, from, to)
				if err != nil {
					return Fail("invalid_input", err.Error())
				}
				return Ok(fmt.Sprintf("%v", v), map[string]any{"result": v})
			}

			for _, cat := range linearCategories {
				fromBase, fromOK := cat.toBase[from]
				toBase, toOK := cat.toBase[to]
				if fromOK && toOK {
					v := args.Value * fromBase / toBase
					return Ok(fmt.Sprintf("%v", v), map[string]any{"result": v, "category": cat.name})
				}
				if fromOK != toOK {
					return Fail("category_mismatch", fmt.Sprintf("%q and %q are not in the same unit category", args.From, args.To))
				}
			}
			return Fail("invalid_input", fmt.Sprintf("unrecognized units %q -> %q", args.From, args.To))
		})
}

func normalizeUnit(u string) string {
	out := make([]byte, 0, len(u))
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != ' ' {
			out = append(out, c)
		}
	}
	return string(out)
}

func convertTemperature(v float64, from, to string) (float64, error) {
	from, to = canonicalTemp(from), canonicalTemp(to)
	if from == to {
		return v, nil
	}
	switch {
	case from == "celsius" && to == "fahrenheit":
		return v*9/5 + 32, nil
	case from == "fahrenheit" && to == "celsius":
		return (v - 32) * 5 / 9, nil
	default:
		return 0, fmt.Errorf("unsupported temperature conversion %s -> %s", from, to)
	}
}

func canonicalTemp(u string) string {
	switch u {
	case "c":
		return "celsius"
	case "f":
		return "fahrenheit"
	default:
		return u
	}
}
