package cleaner

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// walk visits n and every descendant in document order. The visit
// function may mutate the node but must not detach it; passes that
// remove nodes work from the snapshot returned by elementsIn instead.
// Traversal is iterative so pathological nesting cannot blow the stack.
func walk(n *html.Node, visit func(*html.Node)) {
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(cur)
		// Push children in reverse so the first child pops first.
		var children []*html.Node
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// elementsIn returns a snapshot of every element under root, excluding
// root itself. Passes iterate the snapshot so they can detach or unwrap
// nodes without invalidating the traversal.
func elementsIn(root *html.Node) []*html.Node {
	var els []*html.Node
	walk(root, func(n *html.Node) {
		if n != root && n.Type == html.ElementNode {
			els = append(els, n)
		}
	})
	return els
}

// attached reports whether n is still reachable from root. Snapshot
// iteration can encounter nodes inside already-detached subtrees.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// detach removes n and its subtree from the document.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// unwrap splices n's children into its parent at n's position and
// removes n. Ownership transfers to the grandparent; nothing is copied.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// rename changes n's tag in place. Children and attributes stay
// attached; only the name (and resolved atom) change.
func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// getAttr returns the value of the named attribute, if present.
// Attribute names are matched case-insensitively; the parser already
// lowercases names it produces.
func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// setAttr replaces or appends the named attribute.
func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// removeAttr deletes the named attribute and reports whether it existed.
func removeAttr(n *html.Node, name string) bool {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// insideListItem reports whether any ancestor of n is an li element.
func insideListItem(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "li" {
			return true
		}
	}
	return false
}

// firstChildElement returns n's first element child, skipping
// whitespace-only text nodes and comments.
func firstChildElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		case html.CommentNode:
			// Inert; keep looking.
		default:
			return nil
		}
	}
	return nil
}
