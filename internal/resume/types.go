package resume

// Data 表示一份完整类型化的简历文档。
// 六个集合始终为非 nil 切片，顺序即展示顺序。
type Data struct {
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
}

// Experience 一段工作/实习经历。
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// Education 一段教育经历。
type Education struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Skill 简历内的一项技能条目。
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Project 简历内的一个项目条目。
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Certification 简历内的一项证书条目。
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// Language 简历内的一项语言条目。
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// Empty 返回所有集合均为空切片的文档，用于档案尚无简历时的默认态。
func Empty() Data {
	return Data{
		Experience:     []Experience{},
		Education:      []Education{},
		Skills:         []Skill{},
		Projects:       []Project{},
		Certifications: []Certification{},
		Languages:      []Language{},
	}
}
