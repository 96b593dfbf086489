// Package convert renders markdown to HTML.
package convert

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrConversion marks a failed markdown-to-HTML conversion. Not retried.
var ErrConversion = errors.New("markdown conversion failed")

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ToHTML converts markdown to an HTML fragment. No container wrapping; the
// caller decides how the fragment is presented.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return buf.String(), nil
}
