// Package extract pulls the main body text and hero image out of article pages.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"TeluguNews/internal/textutil"
)

// Strategy captures a single content heuristic (article tag, class patterns, etc.).
// Extract returns the raw body text and whether the heuristic matched.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) (string, bool)
}

// Chain keeps strategies in evaluation order; the first match wins.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain from strategies in the given order.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// DefaultChain is the article tag, then known container patterns, then a
// paragraph fallback bounded to maxParagraphs.
func DefaultChain(maxParagraphs int) *Chain {
	return NewChain(
		Selector{Label: "article-tag", Query: "article"},
		Selector{Label: "item-prop", Query: `[itemprop="articleBody"]`},
		Selector{Label: "article-body", Query: `[class*="article-body"], [id*="article-body"], [class*="articleBody"]`},
		Selector{Label: "story-content", Query: `[class*="story-content"], [class*="story_details"], [class*="storyDetail"]`},
		Selector{Label: "post-content", Query: `[class*="post-content"], [class*="entry-content"]`},
		Selector{Label: "content-body", Query: `[class*="content-body"], [id*="content-body"], [class*="main-content"]`},
		Paragraphs{Max: maxParagraphs},
	)
}

// Register appends a strategy after the existing ones.
func (c *Chain) Register(s Strategy) {
	c.strategies = append(c.strategies, s)
}

// Prepend puts a site-specific strategy in front of the defaults.
func (c *Chain) Prepend(s Strategy) {
	c.strategies = append([]Strategy{s}, c.strategies...)
}

// Names lists strategy names in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Content runs the chain and returns normalized text plus the matching strategy name.
// Script and style elements are dropped before any strategy sees the document.
func (c *Chain) Content(doc *goquery.Document) (string, string) {
	doc.Find("script, style, noscript, template").Remove()

	for _, s := range c.strategies {
		raw, ok := s.Extract(doc)
		if !ok {
			continue
		}
		if text := textutil.Normalize(raw); text != "" {
			return text, s.Name()
		}
	}
	return "", ""
}

// Selector matches the first element for a CSS query. When the element holds
// paragraphs only their text is used, which skips bylines and share widgets.
type Selector struct {
	Label string
	Query string
}

// Name identifies the strategy inside the chain.
func (s Selector) Name() string { return s.Label }

// Extract implements Strategy.
func (s Selector) Extract(doc *goquery.Document) (string, bool) {
	sel := doc.Find(s.Query).First()
	if sel.Length() == 0 {
		return "", false
	}
	if paragraphs := sel.Find("p"); paragraphs.Length() > 0 {
		return joinText(paragraphs, 0), true
	}
	return sel.Text(), true
}

// Paragraphs concatenates the first Max <p> elements of the page.
type Paragraphs struct {
	Max int
}

// Name identifies the strategy inside the chain.
func (Paragraphs) Name() string { return "paragraphs" }

// Extract implements Strategy.
func (p Paragraphs) Extract(doc *goquery.Document) (string, bool) {
	paragraphs := doc.Find("p")
	if paragraphs.Length() == 0 {
		return "", false
	}
	return joinText(paragraphs, p.Max), true
}

func joinText(sel *goquery.Selection, limit int) string {
	parts := make([]string, 0, sel.Length())
	sel.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if limit > 0 && i >= limit {
			return false
		}
		if text := strings.TrimSpace(item.Text()); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// Image returns the Open Graph or Twitter card image of the page.
func Image(doc *goquery.Document) string {
	queries := []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
		`meta[name="twitter:image:src"]`,
		`meta[property="twitter:image"]`,
	}
	for _, q := range queries {
		if content, ok := doc.Find(q).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}
