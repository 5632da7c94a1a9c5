package render

import (
	"strings"
	"unicode"
)

// AddLineBreaks splits text into lines of at most width runes and joins
// them with sep.
//
// A line preferably ends at an existing newline within 1.5×width, since
// such breaks often structure the text ("Cluster Ablehnung:\n…"); otherwise
// at the last space before width; otherwise it is cut hard at width.
// Lines are trimmed of surrounding whitespace, and when an existing newline
// was used, remaining newlines inside the line are dropped.
func AddLineBreaks(text string, width int, sep string) string {
	return strings.Join(splitLines(text, width), sep)
}

func splitLines(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	rs := []rune(s)
	var lines []string
	for len(rs) > width {
		lineBreak := lastIndex(rs, '\n', min(len(rs), width*3/2))
		space := lastIndex(rs, ' ', width)

		cut := width
		switch {
		case lineBreak != -1:
			cut = lineBreak
		case space != -1:
			cut = space
		}

		line := strings.TrimRightFunc(string(rs[:cut]), unicode.IsSpace)
		if lineBreak != -1 {
			line = strings.ReplaceAll(line, "\n", "")
		}
		lines = append(lines, line)
		rs = []rune(strings.TrimLeftFunc(string(rs[cut:]), unicode.IsSpace))
	}
	if len(rs) > 0 {
		lines = append(lines, string(rs))
	}
	return lines
}

// lastIndex returns the last index of r in rs[:end], or -1.
func lastIndex(rs []rune, r rune, end int) int {
	for i := end - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
