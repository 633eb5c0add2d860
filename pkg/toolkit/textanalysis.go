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
	"unicode"
)

// TextAnalysisArgs is the text_analysis tool's argument shape.
type TextAnalysisArgs struct {
	Text string `json:"text" jsonschema:"required,description=Text to analyze"`
}

// NewTextAnalysis builds the text_analysis tool: word/sentence/character
// counts plus the most frequent words. Deterministic, stdlib `unicode`
// scanning suffices (see DESIGN.md).
func NewTextAnalysis() Tool {
	return NewFunc[TextAnalysisArgs]("text_analysis",
		"Report word count, sentence count, character count, and top word frequencies for a piece of text.",
		func(ctx context.Context, args TextAnalysisArgs) Result {
			words := strings.FieldsFunc(args.Text, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
			sentences := strings.FieldsFunc(args.Text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })

			freq := make(map[string]int)
			for _, w := range words {
				freq[strings.ToLower(w)]++
			}

			data := map[string]any{
				"word_count":      len(words),
				"sentence_count":  len(sentences),
				"character_count": len([]rune(args.Text)),
				"top_words":       topWords(freq, 5),
			}
			summary := fmt.Sprintf("%d words, %d sentences, %d characters", len(words), len(sentences), len([]rune(args.Text)))
			return Ok(summary, data)
		})
}

type wordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func topWords(freq map[string]int, n int) []wordCount {
	all := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		all = append(all, wordCount{Word: w, Count: c})
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].Count > all[i].Count {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if len(all) > n {
		all = all[:n]
	}
	return all
}
