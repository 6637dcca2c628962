package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r := NewRenderer()

	out := r.Render("# Heading\n\nSome **bold** text.")
	assert.Contains(t, out, "<h1>Heading</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestRender_StripsScripts(t *testing.T) {
	r := NewRenderer()

	tests := []string{
		"hello <script>alert('x')</script> world",
		"[click](javascript:alert(1))",
		`<img src="x" onerror="alert(1)">`,
	}

	for _, in := range tests {
		out := r.Render(in)
		assert.NotContains(t, out, "<script", "input %q", in)
		assert.NotContains(t, out, "javascript:", "input %q", in)
		assert.NotContains(t, out, "onerror", "input %q", in)
	}
}

func TestRender_LinksGetNoFollow(t *testing.T) {
	r := NewRenderer()

	out := r.Render("[site](https://example.com)")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, "nofollow")
}

func TestRender_EmptyInput(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, "", r.Render(""))
}

func TestRender_GFMTable(t *testing.T) {
	r := NewRenderer()

	out := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.True(t, strings.Contains(out, "<table>"), "expected table markup, got %q", out)
}
