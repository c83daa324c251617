package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string          `gorm:"uniqueIndex;size:64"`
	PasswordHash string          `gorm:"size:255"`
	Profile      *StudentProfile `gorm:"constraint:OnDelete:CASCADE"`
}

// StudentProfile 是学生的根档案，所有业务数据都挂在它下面。
// gpa 保留为字符串：允许 "N/A" 之类的自由文本。
type StudentProfile struct {
	gorm.Model
	UserID          uint             `gorm:"uniqueIndex"`
	FullName        string           `gorm:"size:255"`
	University      string           `gorm:"size:255"`
	Major           string           `gorm:"size:255"`
	Year            string           `gorm:"size:32"`
	GPA             string           `gorm:"size:16"`
	Bio             string           `gorm:"type:text"`
	Email           string           `gorm:"size:255"`
	Phone           string           `gorm:"size:64"`
	Address         string           `gorm:"size:512"`
	DateOfBirth     string           `gorm:"size:32"`
	StudentID       string           `gorm:"size:64"`
	AvatarKey       string           `gorm:"size:512"`
	Skills          []Skill          `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Courses         []Course         `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Projects        []Project        `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Certifications  []Certification  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	JobApplications []JobApplication `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

// Skill 一项技能。
type Skill struct {
	gorm.Model
	ProfileID uint   `gorm:"index"`
	Name      string `gorm:"size:128"`
	Level     string `gorm:"size:32"`
}

// Course 一门课程。
type Course struct {
	gorm.Model
	ProfileID uint   `gorm:"index"`
	Name      string `gorm:"size:255"`
	Code      string `gorm:"size:64"`
	Grade     string `gorm:"size:16"`
	Credits   int
}

// Project 一个项目经历。
type Project struct {
	gorm.Model
	ProfileID   uint   `gorm:"index"`
	Title       string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	Link        string `gorm:"size:512"`
}

// Certification 一项证书。
type Certification struct {
	gorm.Model
	ProfileID uint   `gorm:"index"`
	Name      string `gorm:"size:255"`
	Issuer    string `gorm:"size:255"`
	IssuedAt  string `gorm:"size:32"`
}

// JobApplication 一条求职申请记录。
type JobApplication struct {
	gorm.Model
	ProfileID uint   `gorm:"index"`
	Company   string `gorm:"size:255"`
	Position  string `gorm:"size:255"`
	Status    string `gorm:"size:32"`
	AppliedAt *time.Time
	Notes     string `gorm:"type:text"`
}

// Semester 一个学期的绩点记录。SGPA 采用 0-10 制，仅在新增接口处校验。
type Semester struct {
	gorm.Model
	ProfileID    uint   `gorm:"index"`
	SemesterName string `gorm:"size:128"`
	SGPA         float64
}

// PDF 导出状态机：pending -> processing -> completed/failed。
const (
	PdfStatusPending    = "pending"
	PdfStatusProcessing = "processing"
	PdfStatusCompleted  = "completed"
	PdfStatusFailed     = "failed"
)

// Resume 每个档案唯一的简历文档。
// 六个集合列均为 JSONB 数组，resume_score 在每次保存时重算并落库。
type Resume struct {
	gorm.Model
	ProfileID      uint           `gorm:"uniqueIndex"`
	FullName       string         `gorm:"size:255"`
	Email          string         `gorm:"size:255"`
	Phone          string         `gorm:"size:64"`
	Location       string         `gorm:"size:255"`
	Summary        string         `gorm:"type:text"`
	Experience     datatypes.JSON `gorm:"type:jsonb"`
	Education      datatypes.JSON `gorm:"type:jsonb"`
	Skills         datatypes.JSON `gorm:"type:jsonb"`
	Projects       datatypes.JSON `gorm:"type:jsonb"`
	Certifications datatypes.JSON `gorm:"type:jsonb"`
	Languages      datatypes.JSON `gorm:"type:jsonb"`
	ResumeScore    int
	PdfKey         string `gorm:"size:512"`
	PdfStatus      string `gorm:"size:32"`
}

// ForumPost 论坛帖子。views 只允许通过原子自增更新。
type ForumPost struct {
	gorm.Model
	AuthorProfileID uint           `gorm:"index"`
	Title           string         `gorm:"size:255"`
	Content         string         `gorm:"type:text"`
	Tags            datatypes.JSON `gorm:"type:jsonb"`
	Views           int64          `gorm:"default:0"`
	IsAnswered      bool           `gorm:"default:false"`
	Replies         []ForumReply   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// ForumReply 帖子的回复。每个帖子至多一条 is_accepted_answer = true。
type ForumReply struct {
	gorm.Model
	PostID           uint   `gorm:"index"`
	AuthorProfileID  uint   `gorm:"index"`
	Content          string `gorm:"type:text"`
	IsAcceptedAnswer bool   `gorm:"default:false"`
}

// UserPreferences 与档案一对一的界面偏好，按 profile_id 冲突键 upsert。
type UserPreferences struct {
	gorm.Model
	ProfileID    uint   `gorm:"uniqueIndex"`
	Theme        string `gorm:"size:32;default:'system'"`
	FontSize     string `gorm:"size:16;default:'medium'"`
	HighContrast bool   `gorm:"default:false"`
	ReduceMotion bool   `gorm:"default:false"`
	ScreenReader bool   `gorm:"default:false"`
}
