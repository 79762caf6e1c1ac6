// Package markdown reads structure out of markdown bodies with goldmark.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FirstHeading returns the plain text of the first level-1 heading in a
// markdown body, or "" when there is none. Front matter must already be
// removed.
func FirstHeading(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level == 1 {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil
	})
	return title
}

// plainText concatenates the text segments below n, dropping markup.
func plainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}
