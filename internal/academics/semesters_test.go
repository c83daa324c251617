package academics

import (
	"context"
	"fmt"
	"math"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careernavigator/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Semester{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCGPAEmptyListIsZero(t *testing.T) {
	if got := CGPA(nil); got != 0 {
		t.Fatalf("cgpa of empty list = %f, want 0", got)
	}
}

func TestCGPAIdenticalSemesters(t *testing.T) {
	semesters := []database.Semester{
		{SGPA: 8.5}, {SGPA: 8.5}, {SGPA: 8.5},
	}
	if got := CGPA(semesters); math.Abs(got-8.5) > 1e-9 {
		t.Fatalf("cgpa = %f, want 8.5", got)
	}
}

func TestCGPAMean(t *testing.T) {
	semesters := []database.Semester{
		{SGPA: 7}, {SGPA: 9},
	}
	if got := CGPA(semesters); math.Abs(got-8) > 1e-9 {
		t.Fatalf("cgpa = %f, want 8", got)
	}
}

func TestAddRejectsOutOfRangeSGPA(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, "Sem 1", 10.5); err != ErrInvalidSGPA {
		t.Fatalf("sgpa 10.5 error = %v, want ErrInvalidSGPA", err)
	}
	if _, err := svc.Add(ctx, 1, "Sem 1", -0.1); err != ErrInvalidSGPA {
		t.Fatalf("sgpa -0.1 error = %v, want ErrInvalidSGPA", err)
	}
	if _, err := svc.Add(ctx, 1, "Sem 1", 0); err != nil {
		t.Fatalf("sgpa 0 rejected: %v", err)
	}
	if _, err := svc.Add(ctx, 1, "Sem 2", 10); err != nil {
		t.Fatalf("sgpa 10 rejected: %v", err)
	}
}

func TestDeleteScopedToProfile(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	sem, err := svc.Add(ctx, 1, "Sem 1", 8)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(ctx, 2, sem.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("cross-profile delete error = %v, want ErrRecordNotFound", err)
	}
	if err := svc.Delete(ctx, 1, sem.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	remaining, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no semesters, got %d", len(remaining))
	}
}
