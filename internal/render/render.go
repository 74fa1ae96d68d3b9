// Package render turns an answered question into the formats the server
// returns: an HTML page, a PDF document and plain text.
package render

import "strings"

// Document is everything rendered for one answered question.
type Document struct {
	Title    string
	Question string
	Points   []string
	Snippet  string
	Topic    string
	Language string
}

// DefaultTitle is used when a Document has no title.
const DefaultTitle = "Interview Answer"

// JoinPoints joins points with newlines, the plain-text form of an answer.
func JoinPoints(points []string) string {
	return strings.Join(points, "\n")
}

func (d Document) title() string {
	if strings.TrimSpace(d.Title) == "" {
		return DefaultTitle
	}
	return d.Title
}
