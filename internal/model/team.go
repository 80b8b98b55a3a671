package model

import (
	"time"
)

// TeamInfo 研究组与项目组共有的字段
type TeamInfo struct {
	Name        string    `gorm:"size:100;not null" json:"name"`
	Explain     string    `gorm:"type:text" json:"explain"`
	RecruitNum  int       `gorm:"default:0" json:"recruit_num"`
	IsRecruited bool      `gorm:"not null" json:"is_recruited"`
	IsFinished  bool      `gorm:"default:false" json:"is_finished"`
	StartDate   time.Time `json:"start_date"`
	Period      int       `json:"period"` // 周
}

// ProjectTeam 项目组
type ProjectTeam struct {
	ID                int64 `gorm:"primaryKey" json:"id"`
	TeamInfo          `gorm:"embedded"`
	ProjectExplain    string    `gorm:"type:text" json:"project_explain"`
	FrontendNum       int       `gorm:"default:0" json:"frontend_num"`
	BackendNum        int       `gorm:"default:0" json:"backend_num"`
	DevopsNum         int       `gorm:"default:0" json:"devops_num"`
	FullStackNum      int       `gorm:"default:0" json:"full_stack_num"`
	DataEngineerNum   int       `gorm:"default:0" json:"data_engineer_num"`
	GithubLink        string    `gorm:"size:500" json:"github_link"`
	NotionLink        string    `gorm:"size:500" json:"notion_link"`
	Counters          `gorm:"embedded"`
	IsDeleted         bool      `gorm:"default:false;index" json:"-"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Stacks []ProjectStack `gorm:"foreignKey:ProjectTeamID" json:"stacks,omitempty"`
	Images []ProjectImage `gorm:"foreignKey:ProjectTeamID" json:"images,omitempty"`
}

func (ProjectTeam) TableName() string {
	return "project_teams"
}

type ProjectStack struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	ProjectTeamID int64  `gorm:"not null;index" json:"-"`
	Stack         string `gorm:"size:50;not null" json:"stack"`
}

func (ProjectStack) TableName() string {
	return "project_stacks"
}

type ProjectImage struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	ProjectTeamID int64  `gorm:"not null;index" json:"-"`
	ImageURL      string `gorm:"size:500;not null" json:"image_url"`
	IsMain        bool   `gorm:"default:false" json:"is_main"`
}

func (ProjectImage) TableName() string {
	return "project_images"
}

// StudyTeam 研究组
type StudyTeam struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	TeamInfo  `gorm:"embedded"`
	Goal      string    `gorm:"type:text" json:"goal"`
	Rule      string    `gorm:"type:text" json:"rule"`
	Counters  `gorm:"embedded"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Images []StudyImage `gorm:"foreignKey:StudyTeamID" json:"images,omitempty"`
}

func (StudyTeam) TableName() string {
	return "study_teams"
}

type StudyImage struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	StudyTeamID int64  `gorm:"not null;index" json:"-"`
	ImageURL    string `gorm:"size:500;not null" json:"image_url"`
	IsMain      bool   `gorm:"default:false" json:"is_main"`
}

func (StudyImage) TableName() string {
	return "study_images"
}

// MainImage 返回主图地址，没有主图时取第一张
func (s *StudyTeam) MainImage() string {
	for _, img := range s.Images {
		if img.IsMain {
			return img.ImageURL
		}
	}
	if len(s.Images) > 0 {
		return s.Images[0].ImageURL
	}
	return ""
}

// MainImage 返回主图地址，没有主图时取第一张
func (p *ProjectTeam) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

// StackNames 项目使用的技术栈
func (p *ProjectTeam) StackNames() []string {
	names := make([]string, 0, len(p.Stacks))
	for _, s := range p.Stacks {
		names = append(names, s.Stack)
	}
	return names
}
