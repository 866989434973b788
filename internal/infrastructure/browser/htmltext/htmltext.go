// Package htmltext extracts DOM textContent from serialized HTML.
package htmltext

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TextContent concatenates every text node in markup, matching the DOM's
// textContent of the serialized element: comments are skipped, script and
// style bodies are kept, whitespace is preserved.
func TextContent(markup string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return sb.String(), nil
			}
			return "", z.Err()
		case html.TextToken:
			sb.WriteString(z.Token().Data)
		}
	}
}
