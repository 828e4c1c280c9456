package validator

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenBlocks = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Noscript: {},
	atom.Nav:      {},
	atom.Header:   {},
	atom.Footer:   {},
}

// VisibleText returns the text a reader would see in the main body of the
// page: script, style, noscript, nav, header and footer blocks are dropped,
// entities are decoded and whitespace is collapsed.
func VisibleText(content []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(content))

	var b strings.Builder
	hiddenDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if _, hidden := hiddenBlocks[atom.Lookup(name)]; hidden {
				hiddenDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if _, hidden := hiddenBlocks[atom.Lookup(name)]; hidden && hiddenDepth > 0 {
				hiddenDepth--
			}
		case html.TextToken:
			if hiddenDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}
