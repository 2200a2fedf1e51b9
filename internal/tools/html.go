package tools

import (
	"strings"

	"golang.org/x/net/html"
)

// stripTags removes markup from s, dropping script and style bodies.
// Entities are left as written.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Raw())
			}
		}
	}
}

func isRawTextTag(name []byte) bool {
	tag := string(name)
	return tag == "script" || tag == "style"
}

// sanitizeText trims, strips tags and collapses whitespace runs.
func sanitizeText(s string) string {
	return strings.Join(strings.Fields(stripTags(s)), " ")
}
