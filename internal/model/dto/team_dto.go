package dto

import (
	"time"

	"github.com/qs3c/crew_server/internal/model"
)

// CreateTeamRequest 创建研究组/项目组
type CreateTeamRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=100"`
	Explain    string     `json:"explain" binding:"max=2000"`
	RecruitNum int        `json:"recruit_num" binding:"gte=0,lte=100"`
	StartDate  *time.Time `json:"start_date"`
	Period     int        `json:"period" binding:"gte=0"`
	Images     []string   `json:"images" binding:"max=10,dive,url"`

	// 研究组
	Goal string `json:"goal"`
	Rule string `json:"rule"`

	// 项目组
	ProjectExplain  string   `json:"project_explain"`
	FrontendNum     int      `json:"frontend_num" binding:"gte=0"`
	BackendNum      int      `json:"backend_num" binding:"gte=0"`
	DevopsNum       int      `json:"devops_num" binding:"gte=0"`
	FullStackNum    int      `json:"full_stack_num" binding:"gte=0"`
	DataEngineerNum int      `json:"data_engineer_num" binding:"gte=0"`
	GithubLink      string   `json:"github_link" binding:"omitempty,url"`
	NotionLink      string   `json:"notion_link" binding:"omitempty,url"`
	Stacks          []string `json:"stacks" binding:"max=20"`
	LeaderRole      string   `json:"leader_role" binding:"max=30"`
}

// UpdateTeamRequest 更新团队，nil 字段不修改
type UpdateTeamRequest struct {
	Name           *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Explain        *string   `json:"explain" binding:"omitempty,max=2000"`
	RecruitNum     *int      `json:"recruit_num" binding:"omitempty,gte=0,lte=100"`
	Period         *int      `json:"period" binding:"omitempty,gte=0"`
	Goal           *string   `json:"goal"`
	Rule           *string   `json:"rule"`
	ProjectExplain *string   `json:"project_explain"`
	GithubLink     *string   `json:"github_link" binding:"omitempty,url"`
	NotionLink     *string   `json:"notion_link" binding:"omitempty,url"`
	IsFinished     *bool     `json:"is_finished"`
	Stacks         *[]string `json:"stacks"`
}

// ListTeamsRequest 团队列表
type ListTeamsRequest struct {
	Offset         int  `form:"offset,default=0" binding:"gte=0"`
	Limit          int  `form:"limit,default=10" binding:"gte=1,lte=50"`
	RecruitingOnly bool `form:"recruiting_only"`
}

// ApplyRequest 入组申请
type ApplyRequest struct {
	Summary  string `json:"summary" binding:"max=1000"`
	TeamRole string `json:"team_role" binding:"max=30"`
}

// AddMemberRequest 组长直接添加成员
type AddMemberRequest struct {
	UserID   int64  `json:"user_id" binding:"required,gt=0"`
	IsLeader bool   `json:"is_leader"`
	TeamRole string `json:"team_role" binding:"max=30"`
}

// MembershipView 成员操作结果；Warnings 为提交后未能送达的通知
type MembershipView struct {
	ID        int64                  `json:"id"`
	TeamKind  model.TeamKind         `json:"team_kind"`
	TeamID    int64                  `json:"team_id"`
	UserID    int64                  `json:"user_id"`
	IsLeader  bool                   `json:"is_leader"`
	TeamRole  string                 `json:"team_role,omitempty"`
	Summary   string                 `json:"summary,omitempty"`
	Status    model.MembershipStatus `json:"status"`
	IsDeleted bool                   `json:"is_deleted"`
	UpdatedAt time.Time              `json:"updated_at"`
	User      *UserBrief             `json:"user,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
}

// TeamDetail 团队详情
type TeamDetail struct {
	Kind        model.TeamKind `json:"kind"`
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Explain     string         `json:"explain"`
	RecruitNum  int            `json:"recruit_num"`
	IsRecruited bool           `json:"is_recruited"`
	IsFinished  bool           `json:"is_finished"`
	StartDate   time.Time      `json:"start_date"`
	Period      int            `json:"period"`
	Images      []string       `json:"images"`

	Goal string `json:"goal,omitempty"`
	Rule string `json:"rule,omitempty"`

	ProjectExplain  string   `json:"project_explain,omitempty"`
	FrontendNum     int      `json:"frontend_num,omitempty"`
	BackendNum      int      `json:"backend_num,omitempty"`
	DevopsNum       int      `json:"devops_num,omitempty"`
	FullStackNum    int      `json:"full_stack_num,omitempty"`
	DataEngineerNum int      `json:"data_engineer_num,omitempty"`
	GithubLink      string   `json:"github_link,omitempty"`
	NotionLink      string   `json:"notion_link,omitempty"`
	Stacks          []string `json:"stacks,omitempty"`

	CounterView
	Members   []*MembershipView `json:"members,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
