package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("## Syllabus\n\n- **Week 1**: basics\n\n<script>alert(1)</script>")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h2 id="syllabus">Syllabus</h2>`)
	assert.Contains(t, html, "<strong>Week 1</strong>")
	assert.NotContains(t, html, "<script>")
}
