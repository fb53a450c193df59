package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// documentLines normalizes a documentation file into scannable lines.
// HTML is reduced to its visible text; fenced code blocks in Markdown
// are blanked (code samples are not claims) while preserving line
// numbers for claim locations.
func documentLines(path, content string) []string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return htmlLines(content)
	}

	lines := strings.Split(content, "\n")
	if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown") {
		blankFencedCode(lines)
	}
	return lines
}

// blankFencedCode replaces lines inside ``` fences with empty strings
// in place, keeping the slice length stable
func blankFencedCode(lines []string) {
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			lines[i] = ""
			continue
		}
		if inFence {
			lines[i] = ""
		}
	}
}

// htmlLines extracts the visible text of an HTML document, skipping
// script/style subtrees. Line numbers refer to the normalized text,
// not the raw markup.
func htmlLines(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// Recovered: treat unparseable HTML as plain text
		return strings.Split(content, "\n")
	}

	var lines []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				lines = append(lines, text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return lines
}
