package toolgen

import "strings"

// Indent prefixes every non-blank line of code with depth tabs. Lines that
// are blank after trimming become empty.
func Indent(code string, depth int) string {
	prefix := strings.Repeat("\t", max(depth, 0))
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
