package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping indicates front matter that is valid YAML but not a mapping.
var ErrNotMapping = errors.New("yaml front matter is not a mapping")

const (
	keyTitle = "title"
	keyTags  = "tags"
)

// Document is a markdown file split into YAML front matter and body.
//
// The front matter is held as a yaml.Node so that a rewrite only touches the
// keys that were changed; other keys keep their order, style and comments.
type Document struct {
	// Had reports whether the source had a front matter block.
	Had bool

	original []byte
	body     []byte
	style    Style
	doc      *yaml.Node // DocumentNode wrapping a MappingNode
	dirty    bool
}

// Parse splits content and decodes its front matter.
func Parse(content []byte) (*Document, error) {
	raw, body, had, style, err := split(content)
	if err != nil {
		return nil, err
	}

	d := &Document{Had: had, original: content, body: body, style: style}
	if len(bytes.TrimSpace(raw)) == 0 {
		d.doc = emptyDocument()
		return d, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	if len(doc.Content) == 0 {
		d.doc = emptyDocument()
		return d, nil
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	d.doc = &doc
	return d, nil
}

// Body returns the markdown body without front matter.
func (d *Document) Body() []byte { return d.body }

// Title returns the string title, or "" when absent, null or not a scalar.
func (d *Document) Title() string {
	v := d.lookup(keyTitle)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return ""
	}
	return v.Value
}

// Tags returns the author-declared tags normalized to a string slice.
func (d *Document) Tags() []string {
	v := d.lookup(keyTags)
	if v == nil {
		return []string{}
	}
	var decoded any
	if err := v.Decode(&decoded); err != nil {
		return []string{}
	}
	return NormalizeTags(decoded)
}

// SetTags replaces the tags key (appending it when absent). A document
// without front matter gains a block holding only the tags.
func (d *Document) SetTags(tags []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, t := range tags {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t})
	}

	m := d.mapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == keyTags {
			// Keep a flow-style list flow-style.
			seq.Style = m.Content[i+1].Style & yaml.FlowStyle
			m.Content[i+1] = seq
			d.Had = true
			d.dirty = true
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: keyTags},
		seq,
	)
	d.Had = true
	d.dirty = true
}

// Bytes renders the document. An unmodified document returns its source bytes.
func (d *Document) Bytes() ([]byte, error) {
	if !d.dirty {
		return d.original, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.doc); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	raw := buf.Bytes()
	if nl := d.style.newline(); nl != "\n" {
		raw = bytes.ReplaceAll(raw, []byte("\n"), []byte(nl))
	}
	return join(raw, d.body, d.Had, d.style), nil
}

func (d *Document) mapping() *yaml.Node {
	return d.doc.Content[0]
}

func (d *Document) lookup(key string) *yaml.Node {
	m := d.mapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}
