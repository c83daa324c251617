package resume

import "strings"

// 完整度打分的权重表。各项权重之和恰为 100，
// 末尾的 100 上限只是保险，不是正常路径。
const (
	contactPoints    = 5
	summaryPoints    = 10
	summaryMinLength = 50
	experiencePoints = 5
	experienceCap    = 20
	educationPoints  = 5
	educationCap     = 15
	skillPoints      = 1
	skillCap         = 15
	projectPoints    = 2
	projectCap       = 10
	certificationCap = 5
	languageCap      = 5
	maxScore         = 100
)

// Score 计算简历完整度得分（0-100）。
// 纯函数：相同输入恒得相同输出，且每个封顶类目对条目数单调不减。
func Score(data Data) int {
	score := 0

	for _, field := range []string{data.FullName, data.Email, data.Phone, data.Location} {
		if strings.TrimSpace(field) != "" {
			score += contactPoints
		}
	}

	if len(data.Summary) > summaryMinLength {
		score += summaryPoints
	}

	score += capped(len(data.Experience)*experiencePoints, experienceCap)
	score += capped(len(data.Education)*educationPoints, educationCap)
	score += capped(len(data.Skills)*skillPoints, skillCap)
	score += capped(len(data.Projects)*projectPoints, projectCap)
	score += capped(len(data.Certifications), certificationCap)
	score += capped(len(data.Languages), languageCap)

	if score > maxScore {
		score = maxScore
	}
	return score
}

func capped(points, limit int) int {
	if points > limit {
		return limit
	}
	return points
}
