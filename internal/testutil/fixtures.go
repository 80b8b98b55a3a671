package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/model"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	user := &model.User{
		Name:  fmt.Sprintf("testuser_%d", n),
		Email: fmt.Sprintf("test_%d_%d@example.com", n, time.Now().UnixNano()),
		Role:  model.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUserID 指定用户 ID
func WithUserID(id int64) func(*model.User) {
	return func(u *model.User) {
		u.ID = id
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestSession 创建测试分享会
func TestSession(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Session)) *model.Session {
	t.Helper()

	session := &model.Session{
		UserID: userID,
		Title:  fmt.Sprintf("session_%d", nextSeq()),
		Year:   2024,
	}
	for _, opt := range opts {
		opt(session)
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}

// TestBlog 创建测试博客
func TestBlog(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Blog)) *model.Blog {
	t.Helper()

	blog := &model.Blog{
		UserID:   userID,
		Title:    fmt.Sprintf("blog_%d", nextSeq()),
		URL:      "https://blog.example.com/post",
		Category: "TECH",
	}
	for _, opt := range opts {
		opt(blog)
	}
	if err := db.Create(blog).Error; err != nil {
		t.Fatalf("Failed to create test blog: %v", err)
	}
	return blog
}

// TestResume 创建测试简历
func TestResume(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Resume)) *model.Resume {
	t.Helper()

	resume := &model.Resume{
		UserID:   userID,
		Title:    fmt.Sprintf("resume_%d", nextSeq()),
		Position: "BACKEND",
		Category: "RESUME",
	}
	for _, opt := range opts {
		opt(resume)
	}
	if err := db.Create(resume).Error; err != nil {
		t.Fatalf("Failed to create test resume: %v", err)
	}
	return resume
}

// WithResumeID 指定简历 ID
func WithResumeID(id int64) func(*model.Resume) {
	return func(r *model.Resume) {
		r.ID = id
	}
}

// WithResumeLikes 设置简历初始点赞数
func WithResumeLikes(n int) func(*model.Resume) {
	return func(r *model.Resume) {
		r.LikeCount = n
	}
}

// TestStudyTeam 创建测试研究组（不含成员）
func TestStudyTeam(t *testing.T, db *gorm.DB, opts ...func(*model.StudyTeam)) *model.StudyTeam {
	t.Helper()

	team := &model.StudyTeam{
		TeamInfo: model.TeamInfo{
			Name:        fmt.Sprintf("study_%d", nextSeq()),
			RecruitNum:  4,
			IsRecruited: true,
			StartDate:   time.Now(),
			Period:      8,
		},
		Goal: "read one paper a week",
	}
	for _, opt := range opts {
		opt(team)
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("Failed to create test study team: %v", err)
	}
	return team
}

// WithStudyTeamID 指定研究组 ID
func WithStudyTeamID(id int64) func(*model.StudyTeam) {
	return func(s *model.StudyTeam) {
		s.ID = id
	}
}

// TestProjectTeam 创建测试项目组（不含成员）
func TestProjectTeam(t *testing.T, db *gorm.DB, opts ...func(*model.ProjectTeam)) *model.ProjectTeam {
	t.Helper()

	team := &model.ProjectTeam{
		TeamInfo: model.TeamInfo{
			Name:        fmt.Sprintf("project_%d", nextSeq()),
			RecruitNum:  3,
			IsRecruited: true,
			StartDate:   time.Now(),
			Period:      12,
		},
		BackendNum: 2,
		Stacks:     []model.ProjectStack{{Stack: "Go"}, {Stack: "React"}},
		Images:     []model.ProjectImage{{ImageURL: "https://img.example.com/p.png", IsMain: true}},
	}
	for _, opt := range opts {
		opt(team)
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("Failed to create test project team: %v", err)
	}
	return team
}

// TestMember 直接写入一条成员记录
func TestMember(t *testing.T, db *gorm.DB, kind model.TeamKind, teamID, userID int64, opts ...func(*model.Membership)) *model.Membership {
	t.Helper()

	m := &model.Membership{
		TeamID: teamID,
		UserID: userID,
		Status: model.StatusApproved,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := db.Table(kind.MemberTable()).Omit("User").Create(m).Error; err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return m
}

// AsLeader 成员为组长
func AsLeader() func(*model.Membership) {
	return func(m *model.Membership) {
		m.IsLeader = true
	}
}

// WithMemberStatus 设置成员状态
func WithMemberStatus(status model.MembershipStatus) func(*model.Membership) {
	return func(m *model.Membership) {
		m.Status = status
	}
}

// WithMemberDeleted 成员记录处于取消状态
func WithMemberDeleted() func(*model.Membership) {
	return func(m *model.Membership) {
		m.IsDeleted = true
	}
}

// TestInteraction 直接写入一条互动记录，不改动内容计数
func TestInteraction(t *testing.T, db *gorm.DB, kind model.InteractionKind, userID, contentID int64, category model.Category, active bool) *model.Interaction {
	t.Helper()

	i := &model.Interaction{
		UserID:    userID,
		ContentID: contentID,
		Category:  category,
		IsDeleted: !active,
	}
	if err := db.Table(kind.Table()).Create(i).Error; err != nil {
		t.Fatalf("Failed to create test interaction: %v", err)
	}
	return i
}
