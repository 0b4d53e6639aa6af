package util

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNilNode = errors.New("HTML node is nil")

// ParseDocument parses a complete HTML document.
func ParseDocument(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ForEachDomNode calls a task func for each node, including root.
// It recurses (pre-order) if and only if the task returns true.
//
// The task might replace the node, so its NextSibling might change.
func ForEachDomNode(root *html.Node, task func(*html.Node) (bool, error)) error {

	if root == nil {
		return ErrNilNode
	}

	recurse, err := task(root)
	if err != nil {
		return err
	}
	if !recurse {
		return nil
	}

	for child := root.FirstChild; child != nil; {

		nextSiblingBackup := child.NextSibling // backup because the task might modify child.NextSibling

		err = ForEachDomNode(child, task)
		if err != nil {
			return err
		}

		child = nextSiblingBackup
	}

	return nil
}

func attr(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func text(node *html.Node) string {
	var b strings.Builder
	_ = ForEachDomNode(node, func(n *html.Node) (bool, error) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true, nil
	})
	return b.String()
}

// FormValue returns the value of the first input or textarea element with the given name.
// A select element yields the value of its selected option.
func FormValue(root *html.Node, name string) (string, bool) {

	var value string
	var found bool

	_ = ForEachDomNode(root, func(n *html.Node) (bool, error) {
		if found {
			return false, nil
		}
		if n.Type != html.ElementNode {
			return true, nil
		}
		if elemName, _ := attr(n, "name"); elemName != name {
			return true, nil
		}
		switch n.DataAtom {
		case atom.Input:
			value, _ = attr(n, "value")
			found = true
		case atom.Textarea:
			value = text(n)
			found = true
		case atom.Select:
			_ = ForEachDomNode(n, func(opt *html.Node) (bool, error) {
				if opt.Type == html.ElementNode && opt.DataAtom == atom.Option {
					if _, selected := attr(opt, "selected"); selected {
						value, _ = attr(opt, "value")
					}
				}
				return true, nil
			})
			found = true
		}
		return !found, nil
	})

	return value, found
}
