package rod

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxLabelLen = 80

// NodeInfo is what the detector needs from an element's outer HTML.
type NodeInfo struct {
	Tag      string
	Text     string
	Label    string
	Disabled bool
}

var labelAttrs = []string{"aria-label", "title", "alt", "placeholder", "value", "name", "data-tooltip"}

// ParseNodeHTML extracts the visible text and the best human label of the
// first element in fragment. Label prefers visible text, then accessibility
// attributes of the element and of its descendants.
func ParseNodeHTML(fragment string) NodeInfo {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return NodeInfo{}
	}

	var root *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return NodeInfo{Text: collapse(fragment), Label: truncate(collapse(fragment))}
	}

	info := NodeInfo{Tag: root.Data}
	_, info.Disabled = attr(root, "disabled")

	var sb strings.Builder
	collectText(root, &sb)
	info.Text = collapse(sb.String())

	switch {
	case info.Text != "":
		info.Label = info.Text
	default:
		info.Label = firstAttrLabel(root)
	}
	info.Label = truncate(info.Label)
	return info
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && isOneOf(n.Data, "script", "style", "noscript", "svg") {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func firstAttrLabel(n *html.Node) string {
	if n.Type == html.ElementNode {
		for _, key := range labelAttrs {
			if v, ok := attr(n, key); ok && strings.TrimSpace(v) != "" {
				return collapse(v)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := firstAttrLabel(c); v != "" {
			return v
		}
	}
	return ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate keeps at most maxLabelLen runes.
func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxLabelLen {
		return string(r[:maxLabelLen])
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
