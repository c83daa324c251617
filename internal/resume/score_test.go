package resume

import (
	"strings"
	"testing"
)

func maximalData() Data {
	d := Empty()
	d.FullName = "Ada Lovelace"
	d.Email = "ada@example.com"
	d.Phone = "123-456-7890"
	d.Location = "London"
	d.Summary = strings.Repeat("x", 60)
	for i := 0; i < 4; i++ {
		d.Experience = append(d.Experience, Experience{Company: "Acme"})
	}
	for i := 0; i < 3; i++ {
		d.Education = append(d.Education, Education{School: "UCL"})
	}
	for i := 0; i < 15; i++ {
		d.Skills = append(d.Skills, Skill{Name: "Go"})
	}
	for i := 0; i < 5; i++ {
		d.Projects = append(d.Projects, Project{Title: "Engine"})
	}
	for i := 0; i < 5; i++ {
		d.Certifications = append(d.Certifications, Certification{Name: "Cert"})
	}
	for i := 0; i < 5; i++ {
		d.Languages = append(d.Languages, Language{Name: "French"})
	}
	return d
}

func TestScoreEmptyIsZero(t *testing.T) {
	if got := Score(Empty()); got != 0 {
		t.Fatalf("empty resume score = %d, want 0", got)
	}
}

func TestScoreMaximalIsHundred(t *testing.T) {
	if got := Score(maximalData()); got != 100 {
		t.Fatalf("maximal resume score = %d, want 100", got)
	}
}

func TestScoreWorkedExample(t *testing.T) {
	// full_name + email + 60 字摘要 + 3 经历 + 2 教育 + 6 技能 + 1 项目
	// = 5 + 5 + 10 + 15 + 10 + 6 + 2 = 53；再加 phone/location 各 5 分。
	d := Empty()
	d.FullName = "Grace Hopper"
	d.Email = "grace@example.com"
	d.Summary = strings.Repeat("a", 60)
	d.Experience = make([]Experience, 3)
	d.Education = make([]Education, 2)
	d.Skills = make([]Skill, 6)
	d.Projects = make([]Project, 1)

	if got := Score(d); got != 53 {
		t.Fatalf("score = %d, want 53", got)
	}

	d.Phone = "555-0100"
	d.Location = "NYC"
	if got := Score(d); got != 63 {
		t.Fatalf("score with full contact = %d, want 63", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	d := maximalData()
	first := Score(d)
	for i := 0; i < 10; i++ {
		if got := Score(d); got != first {
			t.Fatalf("score changed between calls: %d vs %d", got, first)
		}
	}
}

func TestScoreMonotonicInSkills(t *testing.T) {
	d := Empty()
	prev := Score(d)
	for i := 0; i < 30; i++ {
		d.Skills = append(d.Skills, Skill{Name: "skill"})
		got := Score(d)
		if got < prev {
			t.Fatalf("adding a skill lowered score: %d -> %d at %d skills", prev, got, len(d.Skills))
		}
		prev = got
	}
}

func TestScoreSummaryLengthBoundary(t *testing.T) {
	d := Empty()
	d.Summary = strings.Repeat("s", 50)
	if got := Score(d); got != 0 {
		t.Fatalf("50-char summary scored %d, want 0", got)
	}
	d.Summary = strings.Repeat("s", 51)
	if got := Score(d); got != 10 {
		t.Fatalf("51-char summary scored %d, want 10", got)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	d := maximalData()
	// 超量条目不得越过上限。
	d.Experience = make([]Experience, 100)
	d.Skills = make([]Skill, 1000)
	if got := Score(d); got != 100 {
		t.Fatalf("overfull resume score = %d, want 100", got)
	}
}
