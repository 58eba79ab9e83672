package cleaner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// fragment is the parsed form of one submission. doc is the full
// document tree (goquery needs the document node); root is the synthetic
// wrapper whose children are the caller's content.
type fragment struct {
	doc  *html.Node
	root *html.Node
}

// parseFragment parses raw HTML leniently and returns a tree with a
// single well-defined root. The input is wrapped in a synthetic div
// carrying a unique id before parsing, then that div is located in the
// resulting tree. The wrapper survives HTML5 tree construction even when
// the parser injects html/body wrappers or foster-parents stray
// table content, so the caller's fragment always has one addressable
// parent. If the wrapper cannot be found the whole tree is the root.
func parseFragment(raw string) (*fragment, error) {
	id := "moodleclean-" + uuid.NewString()
	wrapped := fmt.Sprintf(`<div id=%q>%s</div>`, id, raw)

	doc, err := html.Parse(strings.NewReader(wrapped))
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	root := findByID(doc, id)
	if root == nil {
		root = doc
	} else {
		reclaimSiblings(root)
	}
	return &fragment{doc: doc, root: root}, nil
}

// reclaimSiblings pulls the wrapper's following siblings back inside it.
// A stray close tag in the input closes the wrapper early and tree
// construction reparents everything after it as a sibling; without this
// that content would fall outside the root and be lost.
func reclaimSiblings(root *html.Node) {
	for sib := root.NextSibling; sib != nil; {
		next := sib.NextSibling
		sib.Parent.RemoveChild(sib)
		root.AppendChild(sib)
		sib = next
	}
}

// findByID locates the element with the given id attribute.
func findByID(doc *html.Node, id string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode {
			return
		}
		if v, ok := getAttr(n, "id"); ok && v == id {
			found = n
		}
	})
	return found
}
