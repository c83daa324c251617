package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careernavigator/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试一个独立的共享内存库：连接池内的并发连接必须看到同一份数据。
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&database.StudentProfile{},
		&database.Skill{},
		&database.Course{},
		&database.Project{},
		&database.JobApplication{},
		&database.Certification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB) database.StudentProfile {
	t.Helper()
	p := database.StudentProfile{UserID: 1, FullName: "Student", University: "MIT", GPA: "N/A"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func TestLoadAggregatesChildren(t *testing.T) {
	db := newTestDB(t)
	p := seedProfile(t, db)

	if err := db.Create(&database.Skill{ProfileID: p.ID, Name: "Go"}).Error; err != nil {
		t.Fatalf("seed skill: %v", err)
	}
	if err := db.Create(&database.Course{ProfileID: p.ID, Name: "Algorithms"}).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	agg, err := NewAggregator(db, nil).Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if agg.Profile.FullName != "Student" {
		t.Fatalf("profile not loaded: %+v", agg.Profile)
	}
	if len(agg.Skills) != 1 || agg.Skills[0].Name != "Go" {
		t.Fatalf("skills = %+v", agg.Skills)
	}
	if len(agg.Courses) != 1 {
		t.Fatalf("courses = %+v", agg.Courses)
	}
	if agg.Projects == nil || len(agg.Projects) != 0 {
		t.Fatalf("projects should be empty non-nil, got %+v", agg.Projects)
	}
}

func TestLoadMissingProfileFails(t *testing.T) {
	db := newTestDB(t)
	_, err := NewAggregator(db, nil).Load(context.Background(), 42)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}

func TestLoadChildFailureDegradesToEmpty(t *testing.T) {
	db := newTestDB(t)
	p := seedProfile(t, db)
	if err := db.Create(&database.Course{ProfileID: p.ID, Name: "Networks"}).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	// 删表模拟 skills 子集合读取失败：聚合仍需成功返回。
	if err := db.Migrator().DropTable(&database.Skill{}); err != nil {
		t.Fatalf("drop skills: %v", err)
	}

	agg, err := NewAggregator(db, nil).Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("load should not propagate child failure, got %v", err)
	}
	if agg.Skills == nil || len(agg.Skills) != 0 {
		t.Fatalf("skills should degrade to empty, got %+v", agg.Skills)
	}
	if len(agg.Courses) != 1 {
		t.Fatalf("other collections must still load, courses = %+v", agg.Courses)
	}
}

func TestUpdateWritesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	p := seedProfile(t, db)

	agg, err := NewAggregator(db, nil).Update(context.Background(), p.ID, map[string]any{
		"major": "CS",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if agg.Profile.Major != "CS" {
		t.Fatalf("major not updated: %+v", agg.Profile)
	}
	if agg.Profile.University != "MIT" {
		t.Fatalf("untouched field changed: %+v", agg.Profile)
	}
}
