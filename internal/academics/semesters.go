package academics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"careernavigator/internal/database"
)

// ErrInvalidSGPA 表示 SGPA 超出 0-10 的合法区间。
var ErrInvalidSGPA = errors.New("sgpa must be between 0 and 10")

// Service 管理学期绩点记录。CGPA 永不落库，总是由当前列表推导。
type Service struct {
	db *gorm.DB
}

// NewService 构造学期服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List 返回某档案的全部学期，按创建顺序。
func (s *Service) List(ctx context.Context, profileID uint) ([]database.Semester, error) {
	var semesters []database.Semester
	if err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&semesters).Error; err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// Add 新增一个学期。SGPA 只在这里（表单边界）校验，数据层不做约束。
func (s *Service) Add(ctx context.Context, profileID uint, name string, sgpa float64) (*database.Semester, error) {
	if sgpa < 0 || sgpa > 10 {
		return nil, ErrInvalidSGPA
	}
	semester := database.Semester{
		ProfileID:    profileID,
		SemesterName: strings.TrimSpace(name),
		SGPA:         sgpa,
	}
	if err := s.db.WithContext(ctx).Create(&semester).Error; err != nil {
		return nil, fmt.Errorf("create semester: %w", err)
	}
	return &semester, nil
}

// Delete 删除指定学期，只允许档案主人删除自己的记录。
func (s *Service) Delete(ctx context.Context, profileID, semesterID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", semesterID, profileID).
		Delete(&database.Semester{})
	if result.Error != nil {
		return fmt.Errorf("delete semester: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CGPA 返回学期 SGPA 的算术平均值。空列表定义为 0，不是 NaN。
func CGPA(semesters []database.Semester) float64 {
	if len(semesters) == 0 {
		return 0
	}
	var sum float64
	for _, s := range semesters {
		sum += s.SGPA
	}
	return sum / float64(len(semesters))
}
