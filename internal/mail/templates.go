package mail

import (
	"bytes"
	"html/template"
	"strings"
)

// Detail is one label/value row in a notice's details box.
type Detail struct {
	Label string
	Value template.HTML
}

// Notice is the data behind both notification templates: the
// submitter-facing and staff-facing notices share one layout and differ
// only in wording and addressing.
type Notice struct {
	Heading  string
	Greeting string
	Intro    string
	Details  []Detail
	Outro    string
}

var noticeTemplate = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #14532d; color: white; padding: 20px; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">Koru Flicks</h1>
  </div>
  <div style="border: 1px solid #e5e7eb; border-top: none; padding: 20px; border-radius: 0 0 8px 8px;">
    <h2 style="margin-top: 0;">{{.Heading}}</h2>
    {{if .Greeting}}<p>{{.Greeting}}</p>{{end}}
    <p>{{.Intro}}</p>
    {{if .Details}}<div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
      {{range .Details}}<p style="margin: 5px 0;"><strong>{{.Label}}:</strong> {{.Value}}</p>
      {{end}}</div>{{end}}
    {{if .Outro}}<p>{{.Outro}}</p>{{end}}
    <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
    <p style="color: #6b7280; font-size: 12px;">This email was sent automatically by Koru Flicks support.</p>
  </div>
</body>
</html>`))

// RenderNotice executes the shared notice layout.
func RenderNotice(n Notice) (string, error) {
	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Multiline escapes free text and renders its newlines as line breaks.
func Multiline(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}

// Plain escapes free text without newline handling.
func Plain(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}
