// SPDX-License-Identifier: MPL-2.0

// Package render formats markdown for terminal display.
package render

import (
	"github.com/charmbracelet/glamour"
)

// Options configures markdown rendering.
type Options struct {
	// Width is the word wrap width (0 for no wrap).
	Width int
}

// Markdown renders markdown content for the terminal using glamour with
// automatic light/dark style detection.
func Markdown(content string, opts Options) (string, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
	}
	if opts.Width > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", err
	}

	return renderer.Render(content)
}
