package frontmatter

import (
	"bytes"
	"errors"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML front
// matter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

const delimiter = "---"

// Style captures the newline shape of the original document so rewrites
// keep the author's line endings.
type Style struct {
	Newline string
}

// split separates `---` delimited YAML front matter from the body.
//
// had is false when the document does not start with a delimiter line; body
// is then the full input. A closing delimiter at end of input (no trailing
// newline) is accepted.
func split(content []byte) (raw, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}
	rest := content[len(open):]

	// Empty block: "---\n---\n".
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}
	if bytes.Equal(rest, []byte(delimiter)) {
		return []byte{}, []byte{}, true, style, nil
	}

	closing := []byte(nl + delimiter + nl)
	if idx := bytes.Index(rest, closing); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closing):], true, style, nil
	}
	if trailing := []byte(nl + delimiter); bytes.HasSuffix(rest, trailing) {
		return rest[:len(rest)-len(delimiter)], []byte{}, true, style, nil
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// join reassembles a document. Without front matter the body is returned as-is.
func join(raw, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.newline()
	out := make([]byte, 0, 2*(len(delimiter)+len(nl))+len(raw)+len(body))
	out = append(out, delimiter...)
	out = append(out, nl...)
	out = append(out, raw...)
	out = append(out, delimiter...)
	out = append(out, nl...)
	out = append(out, body...)
	return out
}

func (s Style) newline() string {
	if s.Newline == "" {
		return "\n"
	}
	return s.Newline
}

func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}
