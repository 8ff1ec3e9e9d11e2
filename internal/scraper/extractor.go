package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"bestseller-aggregator/internal/models"
)

// maxItems caps every extracted list at a top-10.
const maxItems = 10

// lazyImageAttrs is the attribute priority for cover images. Lazy-loaded
// images park the real URL in data-original or data-src and leave a
// placeholder in src.
var lazyImageAttrs = []string{"data-original", "data-src", "src"}

// fieldSource is one candidate location for a field value: a CSS selector
// plus an optional attribute name. An empty Attr means the element's text.
type fieldSource struct {
	Selector string
	Attr     string
}

func text(selector string) fieldSource { return fieldSource{Selector: selector} }

func attrOf(selector, attr string) fieldSource {
	return fieldSource{Selector: selector, Attr: attr}
}

// ItemRule describes how to pull bestseller rows out of one page layout.
// Each field carries an ordered list of candidate sources so that a layout
// change on the site degrades to the next selector instead of breaking the
// whole extraction.
type ItemRule struct {
	// Container selects the candidate list-item nodes.
	Container string
	// Title candidates, tried in order until one yields non-blank text.
	// Rows with no resolvable title are skipped.
	Title []fieldSource
	// Author and Publisher tolerate absence; empty strings are allowed.
	Author    []fieldSource
	Publisher []fieldSource
	// Meta, when set, selects a combined "author · publisher" node used by
	// layouts that do not mark the two up separately. It takes effect only
	// when Author/Publisher candidates resolved nothing.
	Meta fieldSource
	// Cover selects the cover <img>; CoverAttrs overrides the lazy-load
	// attribute priority when non-nil.
	Cover      string
	CoverAttrs []string
	// Link candidates for the detail-page href.
	Link []fieldSource
}

// ExtractItems applies rule to the document and returns at most ten items,
// deduplicated by title in first-seen order.
func ExtractItems(doc *goquery.Document, rule ItemRule) []models.BestsellerItem {
	var results []models.BestsellerItem
	seen := make(map[string]struct{})

	doc.Find(rule.Container).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := firstValue(item, rule.Title)
		if title == "" {
			return true
		}
		if _, dup := seen[title]; dup {
			return true
		}
		seen[title] = struct{}{}

		author := firstValue(item, rule.Author)
		publisher := firstValue(item, rule.Publisher)
		if author == "" && publisher == "" && rule.Meta.Selector != "" {
			author, publisher = splitMeta(firstValue(item, []fieldSource{rule.Meta}))
		}

		results = append(results, models.BestsellerItem{
			Title:     title,
			Author:    author,
			Publisher: publisher,
			Cover:     NormalizeURL(coverURL(item, rule)),
			Link:      NormalizeURL(firstValue(item, rule.Link)),
		})
		return len(results) < maxItems
	})

	return results
}

// firstValue resolves the first candidate source that yields a non-blank
// value.
func firstValue(item *goquery.Selection, sources []fieldSource) string {
	for _, src := range sources {
		el := item.Find(src.Selector).First()
		if el.Length() == 0 {
			continue
		}
		var value string
		if src.Attr == "" {
			value = cleanText(el.Text())
		} else {
			raw, _ := el.Attr(src.Attr)
			value = cleanText(raw)
		}
		if value != "" {
			return value
		}
	}
	return ""
}

func coverURL(item *goquery.Selection, rule ItemRule) string {
	if rule.Cover == "" {
		return ""
	}
	el := item.Find(rule.Cover).First()
	if el.Length() == 0 {
		return ""
	}
	attrs := rule.CoverAttrs
	if attrs == nil {
		attrs = lazyImageAttrs
	}
	for _, name := range attrs {
		if raw, ok := el.Attr(name); ok {
			if value := cleanText(raw); value != "" {
				return value
			}
		}
	}
	return ""
}
