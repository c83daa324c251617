package worker

import (
	"strings"
	"testing"

	"careernavigator/internal/resume"
)

func TestRenderResumeHTMLIncludesSections(t *testing.T) {
	data := resume.Empty()
	data.FullName = "Jane Doe"
	data.Email = "jane@example.edu"
	data.Summary = "Backend engineering student."
	data.Experience = []resume.Experience{{
		Company:   "Acme",
		Position:  "Intern",
		StartDate: "2024-06",
		EndDate:   "2024-09",
	}}
	data.Skills = []resume.Skill{{Name: "Go", Level: "Advanced"}}

	html, err := renderResumeHTML(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Jane Doe", "jane@example.edu", "Intern · Acme", "Go (Advanced)"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q", want)
		}
	}
	if strings.Contains(html, "Projects") {
		t.Fatalf("empty sections must be omitted")
	}
}

func TestRenderResumeHTMLEscapesMarkup(t *testing.T) {
	data := resume.Empty()
	data.FullName = "<script>alert(1)</script>"

	html, err := renderResumeHTML(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("user input must be escaped")
	}
}
