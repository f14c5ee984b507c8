package evaluator

import "strings"

func isSep(r rune) bool {
	return r == ' ' || r == '\t' || r == ','
}

// splitLines breaks RPN source into trimmed lines, matching
// DynamicCString::Tokenize's "\n" line separator. Per spec.md section 6
// ("Program terminator: EOF or empty line"), the first blank line ends
// the program outright - everything after it is discarded, not merely
// skipped - so a stray blank line mid-source silently truncates the
// program rather than leaving a gap in it.
func splitLines(rpn string) []string {
	raw := strings.Split(rpn, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.Trim(l, "\r")
		if strings.TrimSpace(l) == "" {
			break
		}
		lines = append(lines, l)
	}
	return lines
}

// tokenizeLine splits a line into up to three whitespace/comma
// separated tokens: command, parameter1, parameter2. Missing tokens are
// returned as empty strings.
func tokenizeLine(line string) (command, p1, p2 string) {
	fields := strings.FieldsFunc(line, isSep)
	switch len(fields) {
	case 0:
		return "", "", ""
	case 1:
		return fields[0], "", ""
	case 2:
		return fields[0], fields[1], ""
	default:
		return fields[0], fields[1], fields[2]
	}
}
