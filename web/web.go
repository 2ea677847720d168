// Package web holds the admin templates, embedded into the binary.
package web

import (
	"embed"
	"html/template"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var policy = bluemonday.UGCPolicy()

// Category codes understood by the front-end filter, in display order.
var categoryOrder = []string{"web", "app", "ui"}

var categoryNames = map[string]string{
	"web": "Web Development",
	"app": "Mobile Apps",
	"ui":  "UI/UX Design",
}

// Categories lists the known codes, plus current when it is not one of them.
func Categories(current string) []string {
	out := append([]string(nil), categoryOrder...)
	if _, ok := categoryNames[current]; !ok && current != "" {
		out = append(out, current)
	}
	return out
}

// CategoryName returns the display name of a code; unknown codes show as-is.
func CategoryName(code string) string {
	if n, ok := categoryNames[code]; ok {
		return n
	}
	return code
}

// Markdown renders s and strips anything unsafe from the result.
func Markdown(s string) template.HTML {
	return template.HTML(policy.SanitizeBytes(blackfriday.Run([]byte(s))))
}

func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n]) + "..."
}

// Templates parses every admin page once.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"markdown":     Markdown,
		"truncate":     Truncate,
		"categories":   Categories,
		"categoryName": CategoryName,
	}).ParseFS(templateFS, "templates/*.html")
}
