package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/crew_server/internal/model"
)

var (
	// ErrStatusChanged 条件状态迁移时记录已不在预期状态
	ErrStatusChanged = errors.New("membership status changed concurrently")
	// ErrMemberActive 用户已是在组成员，申请不会改写该记录
	ErrMemberActive = errors.New("membership already active")
)

// MembershipRepository 研究组/项目组成员表的读写，按 TeamKind 选表
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) table(ctx context.Context, kind model.TeamKind) *gorm.DB {
	return conn(ctx, r.db).Table(kind.MemberTable())
}

func (r *MembershipRepository) take(db *gorm.DB) (*model.Membership, error) {
	var m model.Membership
	if err := db.Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID 按主键读取
func (r *MembershipRepository) GetByID(ctx context.Context, kind model.TeamKind, id int64) (*model.Membership, error) {
	return r.take(r.table(ctx, kind).Where("id = ?", id))
}

// Find 读取 (team, user) 的记录，不区分状态；在事务中加行锁
func (r *MembershipRepository) Find(ctx context.Context, kind model.TeamKind, teamID, userID int64) (*model.Membership, error) {
	return r.take(r.table(ctx, kind).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_id = ? AND user_id = ?", teamID, userID))
}

// FindActive 已通过且未取消的成员记录
func (r *MembershipRepository) FindActive(ctx context.Context, kind model.TeamKind, teamID, userID int64) (*model.Membership, error) {
	return r.take(r.table(ctx, kind).
		Where("team_id = ? AND user_id = ? AND status = ? AND is_deleted = ?", teamID, userID, model.StatusApproved, false))
}

// FindPending 待审核且未取消的申请
func (r *MembershipRepository) FindPending(ctx context.Context, kind model.TeamKind, teamID, userID int64) (*model.Membership, error) {
	return r.take(r.table(ctx, kind).
		Where("team_id = ? AND user_id = ? AND status = ? AND is_deleted = ?", teamID, userID, model.StatusPending, false))
}

// UpsertApplication 以 (team_id, user_id) 为键写入待审核申请，已有记录时重新打开
// 条件写：先重开非在组的旧记录，没有再 INSERT ... ON CONFLICT DO NOTHING；
// 在组成员的记录不会被改写，返回 ErrMemberActive
func (r *MembershipRepository) UpsertApplication(ctx context.Context, kind model.TeamKind, teamID, userID int64, summary, teamRole string) (*model.Membership, error) {
	now := time.Now()
	res := r.table(ctx, kind).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Where("NOT (status = ? AND is_deleted = ?)", model.StatusApproved, false).
		Updates(map[string]interface{}{
			"status":     model.StatusPending,
			"summary":    summary,
			"team_role":  teamRole,
			"is_leader":  false,
			"is_deleted": false,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		m := &model.Membership{
			TeamID:    teamID,
			UserID:    userID,
			TeamRole:  teamRole,
			Summary:   summary,
			Status:    model.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := r.table(ctx, kind).Omit("User").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).
			Create(m).Error
		if err != nil {
			return nil, err
		}
	}

	m, err := r.take(r.table(ctx, kind).Where("team_id = ? AND user_id = ?", teamID, userID))
	if err != nil {
		return nil, err
	}
	if m.Active() {
		return nil, ErrMemberActive
	}
	return m, nil
}

// SetStatus 条件迁移：只有当前状态为 from 且未取消时才改为 to
func (r *MembershipRepository) SetStatus(ctx context.Context, kind model.TeamKind, id int64, from, to model.MembershipStatus) (*model.Membership, error) {
	res := r.table(ctx, kind).
		Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStatusChanged
	}
	return r.GetByID(ctx, kind, id)
}

// Cancel 软删除申请，调用方负责确认记录处于待审核状态
func (r *MembershipRepository) Cancel(ctx context.Context, kind model.TeamKind, id int64) (*model.Membership, error) {
	err := r.table(ctx, kind).Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": time.Now()}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, kind, id)
}

// Activate 将记录置为已通过的在组成员
func (r *MembershipRepository) Activate(ctx context.Context, kind model.TeamKind, id int64, isLeader bool) (*model.Membership, error) {
	err := r.table(ctx, kind).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.StatusApproved,
			"is_deleted": false,
			"is_leader":  isLeader,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, kind, id)
}

// CreateApproved 组长直接添加成员，不经过申请
func (r *MembershipRepository) CreateApproved(ctx context.Context, kind model.TeamKind, teamID, userID int64, isLeader bool, teamRole string) (*model.Membership, error) {
	m := &model.Membership{
		TeamID:   teamID,
		UserID:   userID,
		IsLeader: isLeader,
		TeamRole: teamRole,
		Status:   model.StatusApproved,
	}
	if err := r.table(ctx, kind).Omit("User").Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListLeaders 在组组长，带用户信息
func (r *MembershipRepository) ListLeaders(ctx context.Context, kind model.TeamKind, teamID int64) ([]*model.Membership, error) {
	var members []*model.Membership
	err := r.table(ctx, kind).Preload("User").
		Where("team_id = ? AND is_leader = ? AND status = ? AND is_deleted = ?", teamID, true, model.StatusApproved, false).
		Order("id").
		Find(&members).Error
	return members, err
}

// ListActive 在组成员，组长在前
func (r *MembershipRepository) ListActive(ctx context.Context, kind model.TeamKind, teamID int64) ([]*model.Membership, error) {
	var members []*model.Membership
	err := r.table(ctx, kind).Preload("User").
		Where("team_id = ? AND status = ? AND is_deleted = ?", teamID, model.StatusApproved, false).
		Order("is_leader DESC").Order("id").
		Find(&members).Error
	return members, err
}

// ListPending 待审核申请，按申请时间先后
func (r *MembershipRepository) ListPending(ctx context.Context, kind model.TeamKind, teamID int64) ([]*model.Membership, error) {
	var members []*model.Membership
	err := r.table(ctx, kind).Preload("User").
		Where("team_id = ? AND status = ? AND is_deleted = ?", teamID, model.StatusPending, false).
		Order("updated_at").Order("id").
		Find(&members).Error
	return members, err
}
