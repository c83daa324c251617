package worker

import (
	"bytes"
	"fmt"
	"html/template"

	"careernavigator/internal/resume"
)

// resumeTemplate 是导出 PDF 使用的单页 A4 版式。
// 样式内联，避免无头浏览器再去拉外部资源。
var resumeTemplate = template.Must(template.New("resume").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 14mm 16mm; }
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2933; font-size: 11px; line-height: 1.5; }
  h1 { font-size: 22px; margin: 0; }
  h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 1px; border-bottom: 1px solid #cbd2d9; padding-bottom: 2px; margin: 16px 0 6px; }
  .contact { color: #52606d; margin-top: 2px; }
  .entry { margin-bottom: 8px; }
  .entry-head { display: flex; justify-content: space-between; font-weight: bold; }
  .muted { color: #52606d; font-weight: normal; }
  ul.inline { list-style: none; padding: 0; margin: 0; }
  ul.inline li { display: inline-block; background: #e4e7eb; border-radius: 3px; padding: 1px 6px; margin: 0 4px 4px 0; }
</style>
</head>
<body>
  <h1>{{.FullName}}</h1>
  <div class="contact">{{.Email}}{{if .Phone}} · {{.Phone}}{{end}}{{if .Location}} · {{.Location}}{{end}}</div>

  {{if .Summary}}
  <h2>Summary</h2>
  <p>{{.Summary}}</p>
  {{end}}

  {{if .Experience}}
  <h2>Experience</h2>
  {{range .Experience}}
  <div class="entry">
    <div class="entry-head"><span>{{.Position}} · {{.Company}}</span><span class="muted">{{.StartDate}} – {{.EndDate}}</span></div>
    <div>{{.Description}}</div>
  </div>
  {{end}}
  {{end}}

  {{if .Education}}
  <h2>Education</h2>
  {{range .Education}}
  <div class="entry">
    <div class="entry-head"><span>{{.Degree}} · {{.School}}</span><span class="muted">{{.StartDate}} – {{.EndDate}}</span></div>
    {{if .Field}}<div class="muted">{{.Field}}</div>{{end}}
  </div>
  {{end}}
  {{end}}

  {{if .Skills}}
  <h2>Skills</h2>
  <ul class="inline">{{range .Skills}}<li>{{.Name}}{{if .Level}} ({{.Level}}){{end}}</li>{{end}}</ul>
  {{end}}

  {{if .Projects}}
  <h2>Projects</h2>
  {{range .Projects}}
  <div class="entry">
    <div class="entry-head"><span>{{.Title}}</span>{{if .Link}}<span class="muted">{{.Link}}</span>{{end}}</div>
    <div>{{.Description}}</div>
  </div>
  {{end}}
  {{end}}

  {{if .Certifications}}
  <h2>Certifications</h2>
  {{range .Certifications}}
  <div class="entry">
    <div class="entry-head"><span>{{.Name}} · {{.Issuer}}</span><span class="muted">{{.Date}}</span></div>
  </div>
  {{end}}
  {{end}}

  {{if .Languages}}
  <h2>Languages</h2>
  <ul class="inline">{{range .Languages}}<li>{{.Name}}{{if .Proficiency}} ({{.Proficiency}}){{end}}</li>{{end}}</ul>
  {{end}}
</body>
</html>`))

// renderResumeHTML 把结构化简历渲染成可打印的 HTML。
func renderResumeHTML(data resume.Data) (string, error) {
	var buf bytes.Buffer
	if err := resumeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render resume template: %w", err)
	}
	return buf.String(), nil
}
