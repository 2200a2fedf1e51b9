package toolgen

import (
	"strings"
	"unicode"
)

const classSuffix = "Tool"

// ClassName turns free text into an exported type name that never starts
// with a digit and always ends in "Tool".
func ClassName(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(replaceNonAlnum(name)) {
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = classSuffix + out
	}
	if !strings.HasSuffix(out, classSuffix) {
		out += classSuffix
	}
	return out
}

// KebabName lowercases a type name, separating words at capitals and
// underscores with hyphens.
func KebabName(className string) string {
	var b strings.Builder
	for i, r := range className {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.ReplaceAll(b.String(), "_", "-")
}

// FileName returns the generated file name for a type name.
func FileName(prefix, className string) string {
	return prefix + KebabName(className) + ".go"
}

func replaceNonAlnum(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if !isASCIIAlnum(c) {
			buf[i] = ' '
		}
	}
	return string(buf)
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
