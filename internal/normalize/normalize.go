// Package normalize turns loosely structured model output into an ordered
// list of clean points suitable for numbered-list rendering.
package normalize

import (
	"regexp"
	"strings"
)

// DefaultMaxPoints is the cap applied by callers that do not configure one.
const DefaultMaxPoints = 7

var (
	// Marker first, then at least one whitespace or end of line. "1.5" and
	// "-flag" are therefore text, not enumerators.
	enumeratorRe = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•–—])(?:\s+(.*))?$`)
	headingRe    = regexp.MustCompile(`^\s*#+(?:\s+(.*))?$`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	blankRunRe   = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	paragraphRe  = regexp.MustCompile(`\n[ \t]*\n`)
	leadingRe    = regexp.MustCompile(`^(?:\d+[.)]|[-*•–—])(?:\s+|$)`)

	noiseReplacer = strings.NewReplacer("`", "", "~", "", ">", "", "#", "")
)

// Normalize converts a raw model response into an ordered list of points.
// It never fails: empty or whitespace-only input yields an empty list.
func Normalize(raw string) []string {
	text := normalizeNewlines(raw)
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	var (
		rawPoints []string
		buf       strings.Builder
		active    bool
		listItem  bool
	)
	flush := func() {
		if active {
			rawPoints = append(rawPoints, strings.TrimSpace(buf.String()))
			buf.Reset()
			active, listItem = false, false
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case headingRe.MatchString(line):
			// A heading stands alone; the next line never continues it.
			flush()
			rawPoints = append(rawPoints, strings.TrimSpace(headingRe.FindStringSubmatch(line)[1]))
		case enumeratorRe.MatchString(line):
			flush()
			buf.WriteString(strings.TrimSpace(enumeratorRe.FindStringSubmatch(line)[1]))
			active, listItem = true, true
		case active && listItem:
			// Soft-wrapped continuation of an enumerated item.
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(trimmed)
		default:
			// Plain lines outside a list item each form their own point.
			flush()
			buf.WriteString(trimmed)
			active = true
		}
	}
	flush()

	points := cleanAll(rawPoints)
	if len(points) > 0 {
		return points
	}
	return cleanAll(paragraphRe.Split(text, -1))
}

// Truncate caps points to at most max entries by slicing. A non-positive max
// disables the cap.
func Truncate(points []string, max int) []string {
	if max <= 0 || len(points) <= max {
		return points
	}
	return points[:max:max]
}

// Clean strips inline markdown noise from a single point. It repeats until
// the point stops changing, since removing one marker can join the halves of
// another ("*#*" becomes "**").
func Clean(point string) string {
	for {
		next := cleanOnce(point)
		if next == point {
			return next
		}
		point = next
	}
}

func cleanOnce(s string) string {
	s = noiseReplacer.Replace(s)
	s = boldRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.Join(strings.Fields(s), " ")
	for leadingRe.MatchString(s) {
		s = strings.TrimSpace(leadingRe.ReplaceAllString(s, ""))
	}
	return s
}

func cleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := Clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
