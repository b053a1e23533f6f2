package goquery

import (
	"strconv"
	"strings"

	"github.com/fwojciec/sidetoc"
	"golang.org/x/net/html"
)

// elementRef builds a reference to n: a CSS path of nth-child steps from the
// document element, and n's index among its parent's element children.
// The same node in an unchanged document always yields the same ref.
func elementRef(n *html.Node) sidetoc.ElementRef {
	if n == nil || n.Type != html.ElementNode {
		return sidetoc.ElementRef{}
	}

	var steps []string
	index := 0
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		pos := siblingIndex(cur)
		if cur == n {
			index = pos
		}
		if cur.Parent == nil || cur.Parent.Type != html.ElementNode {
			steps = append(steps, cur.Data)
			break
		}
		steps = append(steps, cur.Data+":nth-child("+strconv.Itoa(pos+1)+")")
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return sidetoc.ElementRef{Path: strings.Join(steps, " > "), Index: index}
}

// siblingIndex returns n's zero-based position among its parent's element children.
func siblingIndex(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}
