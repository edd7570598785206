// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

// resultBlockSelector encloses one organic result in the rendered page.
// The markup is not a documented API; this selector and everything below is
// a best-effort heuristic against the page structure observed in practice.
const resultBlockSelector = "div.tF2Cxc"

// navChromeWords mark span text that belongs to the result page's own
// navigation rather than a snippet.
var navChromeWords = []string{"web", "images", "videos", "news", "shopping"}

// uiBoilerplate strings are stripped from descriptions wholesale.
var uiBoilerplate = []string{
	"Press/to jump to the search box",
	"Accessibility help",
}

// parseOrganicResults walks the rendered search page and extracts up to
// maxResults organic results. A block missing both title and link is
// discarded; kept results get contiguous 1-based positions.
func parseOrganicResults(html string, maxResults int) ([]types.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result HTML: %w", err)
	}

	results := []types.SearchResult{}
	doc.Find(resultBlockSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}

		var title, link string
		anchor := block.Find("a[href]").First()
		if anchor.Length() > 0 {
			link = anchor.AttrOr("href", "")
			if h3 := anchor.Find("h3").First(); h3.Length() > 0 {
				title = strings.TrimSpace(h3.Text())
			} else {
				title = strings.TrimSpace(anchor.Text())
			}
		}

		description := findSnippet(block)
		if description == "" {
			description = blockTextWithoutTitle(block, title)
		}
		description = stripBoilerplate(description)

		if title == "" && link == "" {
			return true
		}

		results = append(results, types.SearchResult{
			Title:       title,
			Link:        link,
			Description: description,
			Position:    len(results) + 1,
		})
		return true
	})

	return results, nil
}

// findSnippet returns the first span in the block whose text is long enough
// to be a snippet and is not navigation chrome.
func findSnippet(block *goquery.Selection) string {
	var snippet string
	block.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if len(text) <= 20 {
			return true
		}
		lower := strings.ToLower(text)
		for _, word := range navChromeWords {
			if strings.Contains(lower, word) {
				return true
			}
		}
		snippet = text
		return false
	})
	return snippet
}

// blockTextWithoutTitle falls back to the block's full text, with the title
// substring removed when present.
func blockTextWithoutTitle(block *goquery.Selection, title string) string {
	text := strings.TrimSpace(block.Text())
	if title != "" && strings.Contains(text, title) {
		text = strings.TrimSpace(strings.ReplaceAll(text, title, ""))
	}
	return text
}

func stripBoilerplate(s string) string {
	for _, b := range uiBoilerplate {
		s = strings.ReplaceAll(s, b, "")
	}
	return strings.TrimSpace(s)
}
