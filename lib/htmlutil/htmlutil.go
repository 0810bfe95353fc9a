package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> separates words visually even though it carries no text
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte(' ')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsSpace(c) {
			newStr.WriteRune(' ')
			continue
		}
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText turns any whitespace (including non-breaking spaces) into a plain
// space, drops non-printable runes, collapses runs of spaces and trims the result.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// noise are elements that never contribute to the visible value of a cell
const noise = "sup.reference, style, script, span[style*='display:none'], .sortkey"

// CellText returns the cleaned text of every node in sel, ignoring footnote
// references and hidden markup. sel is not modified.
func CellText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find(noise).Remove()

	var buffer strings.Builder
	for _, n := range clone.Nodes {
		buffer.WriteString(GetText(n))
	}
	return CleanText(buffer.String())
}
