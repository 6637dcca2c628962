// Package markdown renders blog and news bodies to HTML safe for direct
// embedding. Rendering is fail-soft: malformed or hostile input degrades to
// stripped/escaped output and never breaks the page.
package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer builds a renderer with GitHub-flavored extensions and a UGC
// sanitization policy. Relative links stay intact; scripts, event handlers
// and unknown protocols are stripped.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			// Raw HTML still passes through goldmark here; the
			// bluemonday pass below is what strips it.
			html.WithUnsafe(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		md:     md,
		policy: policy,
	}
}

// Render converts markdown to sanitized HTML. Empty input yields empty
// output; rendering failures fall back to sanitizing the raw input as
// plain text.
func (r *Renderer) Render(source string) string {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return r.policy.Sanitize(source)
	}

	return r.policy.Sanitize(buf.String())
}
