package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/jarmeli1/reddit-rss-alerts/internal/feed"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Subject lines stay readable in mail clients; longer titles are cut.
const maxSubjectTitleLen = 180

// AlertData contains all data available to the alert template
type AlertData struct {
	Subreddit string
	Title     string
	Link      string
	Author    string
	Published string
	Summary   template.HTML
	MediaURL  string
}

// Email represents a rendered alert ready to send
type Email struct {
	Subject string
	HTML    string
}

// Engine handles alert email rendering
type Engine struct {
	alert *template.Template
}

// NewEngine creates a new template engine
func NewEngine() (*Engine, error) {
	content, err := embeddedTemplates.ReadFile("templates/alert.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template: %w", err)
	}

	tmpl, err := template.New("alert").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert template: %w", err)
	}

	return &Engine{alert: tmpl}, nil
}

// RenderAlert generates a notification email for a feed entry.
func (e *Engine) RenderAlert(subreddit string, entry feed.Entry) (*Email, error) {
	title := entry.Title
	if title == "" {
		title = "(no title)"
	}
	author := entry.Author
	if author == "" {
		author = "unknown"
	}
	published := entry.Published
	if published == "" && entry.PublishedAt != nil {
		published = entry.PublishedAt.Format("Mon, 02 Jan 2006 15:04 MST")
	}

	data := AlertData{
		Subreddit: subreddit,
		Title:     title,
		Link:      entry.Link,
		Author:    author,
		Published: published,
		// The feed already serves sanitized HTML fragments; render
		// them as-is so formatting and links survive.
		Summary:  template.HTML(entry.Summary),
		MediaURL: entry.MediaURL,
	}

	var buf bytes.Buffer
	if err := e.alert.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render alert template: %w", err)
	}

	return &Email{
		Subject: fmt.Sprintf("[r/%s] %s", subreddit, truncateRunes(title, maxSubjectTitleLen)),
		HTML:    buf.String(),
	}, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
