package model

import (
	"time"
)

// MembershipStatus 入组申请状态
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "PENDING"
	StatusApproved MembershipStatus = "APPROVED"
	StatusRejected MembershipStatus = "REJECTED"
)

// Membership 研究组/项目组成员记录的通用形态，按 TeamKind.MemberTable() 读写
type Membership struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	TeamID    int64            `gorm:"not null" json:"team_id"`
	UserID    int64            `gorm:"not null" json:"user_id"`
	IsLeader  bool             `gorm:"default:false;not null" json:"is_leader"`
	TeamRole  string           `gorm:"size:30" json:"team_role,omitempty"`
	Summary   string           `gorm:"type:text" json:"summary"`
	Status    MembershipStatus `gorm:"size:20;not null" json:"status"`
	IsDeleted bool             `gorm:"default:false;not null" json:"is_deleted"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Active 已通过且未被取消的成员
func (m *Membership) Active() bool {
	return m.Status == StatusApproved && !m.IsDeleted
}

// Pending 待审核且未取消的申请
func (m *Membership) Pending() bool {
	return m.Status == StatusPending && !m.IsDeleted
}

// StudyMember 研究组成员表结构，仅用于建表
type StudyMember struct {
	ID        int64            `gorm:"primaryKey"`
	TeamID    int64            `gorm:"not null;uniqueIndex:uk_study_member,priority:1"`
	UserID    int64            `gorm:"not null;uniqueIndex:uk_study_member,priority:2;index:idx_study_member_user"`
	IsLeader  bool             `gorm:"default:false;not null"`
	TeamRole  string           `gorm:"size:30"`
	Summary   string           `gorm:"type:text"`
	Status    MembershipStatus `gorm:"size:20;not null;default:PENDING"`
	IsDeleted bool             `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StudyMember) TableName() string {
	return "study_members"
}

// ProjectMember 项目组成员表结构，仅用于建表
type ProjectMember struct {
	ID        int64            `gorm:"primaryKey"`
	TeamID    int64            `gorm:"not null;uniqueIndex:uk_project_member,priority:1"`
	UserID    int64            `gorm:"not null;uniqueIndex:uk_project_member,priority:2;index:idx_project_member_user"`
	IsLeader  bool             `gorm:"default:false;not null"`
	TeamRole  string           `gorm:"size:30"`
	Summary   string           `gorm:"type:text"`
	Status    MembershipStatus `gorm:"size:20;not null;default:PENDING"`
	IsDeleted bool             `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProjectMember) TableName() string {
	return "project_members"
}

// AllModels 需要迁移的全部表
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Blog{},
		&Resume{},
		&ProjectTeam{},
		&ProjectStack{},
		&ProjectImage{},
		&StudyTeam{},
		&StudyImage{},
		&Like{},
		&Bookmark{},
		&StudyMember{},
		&ProjectMember{},
	}
}
