package resume

import (
	"reflect"
	"testing"

	"gorm.io/datatypes"

	"careernavigator/internal/database"
)

func TestDecodeDefaultsAbsentCollections(t *testing.T) {
	row := database.Resume{
		FullName: "Alan Turing",
		Email:    "alan@example.com",
		Skills:   datatypes.JSON([]byte(`null`)),
	}

	data, err := Decode(row)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if data.FullName != "Alan Turing" || data.Email != "alan@example.com" {
		t.Fatalf("scalar fields lost: %+v", data)
	}
	for name, length := range map[string]int{
		"experience":     len(data.Experience),
		"education":      len(data.Education),
		"skills":         len(data.Skills),
		"projects":       len(data.Projects),
		"certifications": len(data.Certifications),
		"languages":      len(data.Languages),
	} {
		if length != 0 {
			t.Fatalf("collection %s not defaulted to empty, len=%d", name, length)
		}
	}
	if data.Experience == nil || data.Skills == nil {
		t.Fatal("collections must be non-nil slices")
	}
}

func TestDecodeRejectsMalformedColumn(t *testing.T) {
	row := database.Resume{
		Experience: datatypes.JSON([]byte(`{"not":"an array"}`)),
	}
	if _, err := Decode(row); err == nil {
		t.Fatal("expected decode error for malformed experience column")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Data{
		FullName: "Katherine Johnson",
		Email:    "kj@example.com",
		Phone:    "555-0101",
		Location: "Hampton",
		Summary:  "Trajectory analysis for orbital missions.",
		Experience: []Experience{
			{Company: "NACA", Position: "Computer", StartDate: "1953", EndDate: "1958", Description: "Flight research"},
			{Company: "NASA", Position: "Aerospace Technologist", StartDate: "1958", EndDate: "1986"},
		},
		Education: []Education{
			{School: "West Virginia State", Degree: "BS", Field: "Mathematics", StartDate: "1933", EndDate: "1937"},
		},
		Skills:         []Skill{{Name: "Orbital mechanics", Level: "expert"}},
		Projects:       []Project{{Title: "Mercury trajectories", Description: "Launch windows", Link: "https://example.com"}},
		Certifications: []Certification{},
		Languages:      []Language{{Name: "English", Proficiency: "native"}},
	}

	var row database.Resume
	if err := Encode(original, &row); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if row.ResumeScore != Score(original) {
		t.Fatalf("persisted score %d != computed %d", row.ResumeScore, Score(original))
	}

	decoded, err := Decode(row)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip lost data:\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
}

func TestEncodeNilCollectionsBecomeEmptyArrays(t *testing.T) {
	var row database.Resume
	if err := Encode(Data{FullName: "x"}, &row); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(row.Skills) != "[]" {
		t.Fatalf("nil skills encoded as %q, want []", string(row.Skills))
	}
	if string(row.Languages) != "[]" {
		t.Fatalf("nil languages encoded as %q, want []", string(row.Languages))
	}
}
