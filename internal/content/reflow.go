// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"regexp"
	"strings"
)

// paragraphBreak matches a paragraph boundary: two or more newlines with any
// surrounding horizontal whitespace.
var paragraphBreak = regexp.MustCompile(`[ \t]*\n[ \t]*(?:\n[ \t]*)+`)

// shortLineWords is the word-count threshold below which a paragraph's lines
// are treated as list items or navigation fragments and left unjoined.
const shortLineWords = 5

// Reflow merges soft-wrapped paragraphs into single lines so the model sees
// prose rather than typesetting artifacts. Text is split into paragraphs on
// blank-line boundaries; within each paragraph the lines are joined with
// single spaces, except that a paragraph whose lines are all short (fewer
// than five words each) is kept line-broken — those are usually bullet
// lists or menu fragments, and joining them would garble the content.
// Paragraphs are re-joined with blank lines, dropping empty ones.
func Reflow(text string) string {
	paragraphs := paragraphBreak.Split(text, -1)

	var kept []string
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		lines := strings.Split(para, "\n")
		if len(lines) > 1 && !allLinesShort(lines) {
			for i, line := range lines {
				lines[i] = strings.TrimSpace(line)
			}
			para = strings.Join(lines, " ")
		}
		kept = append(kept, para)
	}

	return strings.Join(kept, "\n\n")
}

func allLinesShort(lines []string) bool {
	for _, line := range lines {
		if len(strings.Fields(line)) >= shortLineWords {
			return false
		}
	}
	return true
}
