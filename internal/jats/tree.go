package jats

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// element is a parsed XML element with mixed content kept in document order.
// Kids holds *element and string values interleaved, so Text reassembles
// prose exactly as written even when inline markup (italic, xref) splits it.
type element struct {
	Name  string
	Attrs []xml.Attr
	Kids  []any
}

func parseTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{Name: t.Name.Local, Attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Kids = append(parent.Kids, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Kids = append(parent.Kids, string(t))
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	return root, nil
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// child returns the first direct child element with the given tag.
func (e *element) child(tag string) *element {
	for _, k := range e.Kids {
		if el, ok := k.(*element); ok && el.Name == tag {
			return el
		}
	}
	return nil
}

// find returns the first descendant element with the given tag, in document
// order.
func (e *element) find(tag string) *element {
	for _, k := range e.Kids {
		el, ok := k.(*element)
		if !ok {
			continue
		}
		if el.Name == tag {
			return el
		}
		if found := el.find(tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant element with the given tag, in document
// order, including nested occurrences.
func (e *element) findAll(tag string) []*element {
	var out []*element
	for _, k := range e.Kids {
		el, ok := k.(*element)
		if !ok {
			continue
		}
		if el.Name == tag {
			out = append(out, el)
		}
		out = append(out, el.findAll(tag)...)
	}
	return out
}

// findWithAttr returns the first descendant with the given tag whose
// attribute matches the value.
func (e *element) findWithAttr(tag, attr, value string) *element {
	for _, el := range e.findAll(tag) {
		if el.attr(attr) == value {
			return el
		}
	}
	return nil
}

// text returns all character data under the element, in document order.
func (e *element) text() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *element) writeText(b *strings.Builder) {
	for _, k := range e.Kids {
		switch v := k.(type) {
		case string:
			b.WriteString(v)
		case *element:
			v.writeText(b)
		}
	}
}

// hasChildElements reports whether the element has at least one element child.
func (e *element) hasChildElements() bool {
	for _, k := range e.Kids {
		if _, ok := k.(*element); ok {
			return true
		}
	}
	return false
}
