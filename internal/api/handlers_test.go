package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careernavigator/internal/academics"
	"careernavigator/internal/database"
	"careernavigator/internal/resume"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// injectProfile 代替认证中间件，把固定的 profileID 塞进上下文。
func injectProfile(profileID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Set("profileID", profileID)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetResumeReturnsEmptyDocumentBeforeFirstSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewResumeHandler(db, nil, nil, nil, nil)

	router := gin.New()
	router.GET("/resume", injectProfile(1), h.GetResume)

	w := doJSON(t, router, http.MethodGet, "/resume", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Data        resume.Data `json:"data"`
		ResumeScore int         `json:"resume_score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResumeScore != 0 {
		t.Fatalf("score = %d, want 0", resp.ResumeScore)
	}
	if resp.Data.Skills == nil || len(resp.Data.Skills) != 0 {
		t.Fatalf("skills should decode to empty list, got %#v", resp.Data.Skills)
	}
}

func TestSaveResumePersistsScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewResumeHandler(db, nil, nil, nil, nil)

	router := gin.New()
	router.PUT("/resume", injectProfile(7), h.SaveResume)

	data := resume.Empty()
	data.FullName = "Jane Doe"
	data.Email = "jane@example.edu"
	data.Skills = []resume.Skill{{Name: "Go"}, {Name: "SQL"}}

	w := doJSON(t, router, http.MethodPut, "/resume", data)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var row database.Resume
	if err := db.Where("profile_id = ?", 7).First(&row).Error; err != nil {
		t.Fatalf("load saved resume: %v", err)
	}
	if row.ResumeScore != resume.Score(data) {
		t.Fatalf("stored score = %d, want %d", row.ResumeScore, resume.Score(data))
	}

	// 再次保存同一档案必须覆盖，不是新增。
	data.Summary = "An aspiring engineer with interests in distributed systems now."
	w = doJSON(t, router, http.MethodPut, "/resume", data)
	if w.Code != http.StatusOK {
		t.Fatalf("second save status = %d", w.Code)
	}
	var count int64
	db.Model(&database.Resume{}).Where("profile_id = ?", 7).Count(&count)
	if count != 1 {
		t.Fatalf("resume rows = %d, want 1", count)
	}
}

func TestPreferencesDefaultsAndUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewPreferencesHandler(db)

	router := gin.New()
	router.GET("/preferences", injectProfile(3), h.GetPreferences)
	router.PUT("/preferences", injectProfile(3), h.SavePreferences)

	w := doJSON(t, router, http.MethodGet, "/preferences", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var prefs database.UserPreferences
	if err := json.Unmarshal(w.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if prefs.Theme != "system" || prefs.FontSize != "medium" {
		t.Fatalf("defaults = %q/%q, want system/medium", prefs.Theme, prefs.FontSize)
	}

	body := map[string]any{"theme": "dark", "font_size": "large", "high_contrast": true}
	if w := doJSON(t, router, http.MethodPut, "/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body=%s", w.Code, w.Body.String())
	}
	body["theme"] = "light"
	if w := doJSON(t, router, http.MethodPut, "/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("second save status = %d", w.Code)
	}

	var count int64
	db.Model(&database.UserPreferences{}).Where("profile_id = ?", 3).Count(&count)
	if count != 1 {
		t.Fatalf("preference rows = %d, want 1", count)
	}
	var stored database.UserPreferences
	if err := db.Where("profile_id = ?", 3).First(&stored).Error; err != nil {
		t.Fatalf("load preferences: %v", err)
	}
	if stored.Theme != "light" || !stored.HighContrast {
		t.Fatalf("stored = %+v, want theme=light high_contrast=true", stored)
	}
}

func TestSavePreferencesRejectsUnknownTheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewPreferencesHandler(db)

	router := gin.New()
	router.PUT("/preferences", injectProfile(3), h.SavePreferences)

	body := map[string]any{"theme": "solarized", "font_size": "medium"}
	if w := doJSON(t, router, http.MethodPut, "/preferences", body); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSemesterEndpointsDeriveCGPA(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	router := gin.New()
	h := NewAcademicsHandler(academics.NewService(db))
	router.GET("/semesters", injectProfile(5), h.ListSemesters)
	router.POST("/semesters", injectProfile(5), h.AddSemester)

	for _, sgpa := range []float64{8.0, 9.0} {
		body := map[string]any{"semester_name": "Sem", "sgpa": sgpa}
		if w := doJSON(t, router, http.MethodPost, "/semesters", body); w.Code != http.StatusCreated {
			t.Fatalf("add status = %d, body=%s", w.Code, w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/semesters", nil)
	var resp semestersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CGPA != 8.5 {
		t.Fatalf("cgpa = %v, want 8.5", resp.CGPA)
	}

	body := map[string]any{"semester_name": "Bad", "sgpa": 11.0}
	if w := doJSON(t, router, http.MethodPost, "/semesters", body); w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range sgpa status = %d, want 400", w.Code)
	}
}
