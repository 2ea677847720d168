package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownSanitizes(t *testing.T) {
	out := string(Markdown("**bold** <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "приве...", Truncate("привет мир", 5))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"web", "app", "ui"}, Categories("web"))
	assert.Equal(t, []string{"web", "app", "ui", "data"}, Categories("data"))
	assert.Equal(t, []string{"web", "app", "ui"}, Categories(""))
	assert.Equal(t, "Mobile Apps", CategoryName("app"))
	assert.Equal(t, "data", CategoryName("data"))
}

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"login", "dashboard", "projects", "add_project", "edit_project"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}

	var buf bytes.Buffer
	data := map[string]any{"Title": "Login", "Error": "Invalid email or password", "Email": "a@b.c"}
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "login", data))
	assert.True(t, strings.Contains(buf.String(), "Invalid email or password"))
}
