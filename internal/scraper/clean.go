package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Clean joins raw text fragments and collapses whitespace runs into single
// spaces. ok is false when there were no fragments at all.
func Clean(fragments []string) (text string, ok bool) {
	if len(fragments) == 0 {
		return "", false
	}
	return strings.Join(strings.Fields(strings.Join(fragments, " ")), " "), true
}

// textFragments returns every text node under the selection, in document order.
func textFragments(sel *goquery.Selection) []string {
	var out []string
	for _, node := range sel.Nodes {
		collectText(node, &out)
	}
	return out
}

func collectText(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		*out = append(*out, node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, out)
	}
}

// cleanSelection returns "" for an empty selection and for one holding
// only whitespace.
func cleanSelection(sel *goquery.Selection) string {
	text, _ := Clean(textFragments(sel))
	return text
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(base, "/") + href
}
