// Package normalize turns raw collector records into the post and user
// schemas the graph builders consume.
package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup returns the visible text of an HTML fragment. Entities are
// decoded, block boundaries and line breaks become spaces, and runs of
// whitespace collapse to one space.
func StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0 // depth inside <script> or <style>
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read.
			return collapseSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skip++
			}
			if breaksText(a) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
			if breaksText(a) {
				b.WriteByte(' ')
			}
		}
	}
}

func breaksText(a atom.Atom) bool {
	switch a {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
