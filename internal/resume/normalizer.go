package resume

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"careernavigator/internal/database"
)

// Decode 将持久化的简历行还原为类型化文档。
// 与早期"直接类型断言"的做法不同，这里对每个 JSONB 列做显式解析：
// 格式不合法的外部数据会返回错误，而不是被悄悄接受。
// 为空/NULL 的集合列一律还原为空切片。
func Decode(row database.Resume) (Data, error) {
	data := Data{
		FullName: row.FullName,
		Email:    row.Email,
		Phone:    row.Phone,
		Location: row.Location,
		Summary:  row.Summary,
	}

	if err := decodeColumn("experience", row.Experience, &data.Experience); err != nil {
		return Data{}, err
	}
	if err := decodeColumn("education", row.Education, &data.Education); err != nil {
		return Data{}, err
	}
	if err := decodeColumn("skills", row.Skills, &data.Skills); err != nil {
		return Data{}, err
	}
	if err := decodeColumn("projects", row.Projects, &data.Projects); err != nil {
		return Data{}, err
	}
	if err := decodeColumn("certifications", row.Certifications, &data.Certifications); err != nil {
		return Data{}, err
	}
	if err := decodeColumn("languages", row.Languages, &data.Languages); err != nil {
		return Data{}, err
	}

	if data.Experience == nil {
		data.Experience = []Experience{}
	}
	if data.Education == nil {
		data.Education = []Education{}
	}
	if data.Skills == nil {
		data.Skills = []Skill{}
	}
	if data.Projects == nil {
		data.Projects = []Project{}
	}
	if data.Certifications == nil {
		data.Certifications = []Certification{}
	}
	if data.Languages == nil {
		data.Languages = []Language{}
	}

	return data, nil
}

// Encode 将类型化文档写回持久化行的形状，并同时重算 resume_score。
// 不修改 row 的归属字段（ID/ProfileID）。
func Encode(data Data, row *database.Resume) error {
	row.FullName = data.FullName
	row.Email = data.Email
	row.Phone = data.Phone
	row.Location = data.Location
	row.Summary = data.Summary

	var err error
	if row.Experience, err = encodeColumn("experience", data.Experience); err != nil {
		return err
	}
	if row.Education, err = encodeColumn("education", data.Education); err != nil {
		return err
	}
	if row.Skills, err = encodeColumn("skills", data.Skills); err != nil {
		return err
	}
	if row.Projects, err = encodeColumn("projects", data.Projects); err != nil {
		return err
	}
	if row.Certifications, err = encodeColumn("certifications", data.Certifications); err != nil {
		return err
	}
	if row.Languages, err = encodeColumn("languages", data.Languages); err != nil {
		return err
	}

	row.ResumeScore = Score(data)
	return nil
}

func decodeColumn[T any](name string, raw datatypes.JSON, dst *[]T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode resume column %s: %w", name, err)
	}
	return nil
}

func encodeColumn[T any](name string, entries []T) (datatypes.JSON, error) {
	if entries == nil {
		entries = []T{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode resume column %s: %w", name, err)
	}
	return datatypes.JSON(raw), nil
}
