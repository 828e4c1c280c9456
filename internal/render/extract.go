package render

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

/*
Extraction Strategy
- Strip site chrome: scripts, navigation, headers, footers, sidebars, forms
- Priority order for the content root:
	- <main>
	- <article>
	- [role="main"]
	- <body> as a last resort
*/

// chromeSelectors are removed before the content root is chosen.
var chromeSelectors = []string{
	"script",
	"style",
	"noscript",
	"template",
	"iframe",
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	"[role='navigation']",
	"[role='banner']",
	"[role='contentinfo']",
	".breadcrumb",
	".usa-banner",
	".usa-skipnav",
	"#skip-link",
}

var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
}

type extraction struct {
	title   string
	content *html.Node
}

func extract(body []byte) (extraction, *RenderError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return extraction{}, &RenderError{Message: err.Error(), Cause: ErrCauseNotHTML}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(strings.Join(chromeSelectors, ", ")).Remove()

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 && isMeaningful(sel.Nodes[0]) {
			return extraction{title: title, content: sel.Nodes[0]}, nil
		}
	}

	bodySel := doc.Find("body").First()
	if bodySel.Length() == 0 || strings.TrimSpace(bodySel.Text()) == "" {
		return extraction{}, &RenderError{Message: "page has no visible content", Cause: ErrCauseNoContent}
	}
	return extraction{title: title, content: bodySel.Nodes[0]}, nil
}

// isMeaningful rejects containers that are empty or mostly links.
func isMeaningful(node *html.Node) bool {
	var stats struct {
		textLength     int
		nonWhitespace  int
		blocks         int
		links          int
		linkTextLength int
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			stats.textLength += len(n.Data)
			for _, r := range n.Data {
				if !unicode.IsSpace(r) {
					stats.nonWhitespace++
				}
			}
		case html.ElementNode:
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "table", "pre", "blockquote":
				stats.blocks++
			case "a":
				stats.links++
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						stats.linkTextLength += len(strings.TrimSpace(c.Data))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	const minNonWhitespace = 50
	const maxLinkDensity = 0.8

	if stats.nonWhitespace < minNonWhitespace || stats.blocks == 0 {
		return false
	}
	if stats.textLength > 0 && stats.links > 2 {
		if float64(stats.linkTextLength)/float64(stats.textLength) > maxLinkDensity {
			return false
		}
	}
	return true
}
