package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/crew_server/internal/model"
)

// TeamRef 研究组/项目组共有的最小信息
type TeamRef struct {
	ID          int64  `gorm:"column:id"`
	Name        string `gorm:"column:name"`
	IsRecruited bool   `gorm:"column:is_recruited"`
	IsFinished  bool   `gorm:"column:is_finished"`
}

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetRef 读取未删除团队的基本信息；在事务中加行锁，与关闭招募互斥
func (r *TeamRepository) GetRef(ctx context.Context, kind model.TeamKind, id int64) (*TeamRef, error) {
	var ref TeamRef
	err := conn(ctx, r.db).Table(kind.TeamTable()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id, name, is_recruited, is_finished").
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *TeamRepository) CreateStudy(ctx context.Context, team *model.StudyTeam) error {
	return conn(ctx, r.db).Create(team).Error
}

func (r *TeamRepository) CreateProject(ctx context.Context, team *model.ProjectTeam) error {
	return conn(ctx, r.db).Create(team).Error
}

func (r *TeamRepository) GetStudy(ctx context.Context, id int64) (*model.StudyTeam, error) {
	var team model.StudyTeam
	err := conn(ctx, r.db).Preload("Images").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) GetProject(ctx context.Context, id int64) (*model.ProjectTeam, error) {
	var team model.ProjectTeam
	err := conn(ctx, r.db).Preload("Stacks").Preload("Images").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListStudies 研究组列表，recruitingOnly 时只返回招募中的
func (r *TeamRepository) ListStudies(ctx context.Context, offset, limit int, recruitingOnly bool) ([]*model.StudyTeam, int64, error) {
	var teams []*model.StudyTeam
	var total int64

	query := conn(ctx, r.db).Model(&model.StudyTeam{}).Where("is_deleted = ?", false)
	if recruitingOnly {
		query = query.Where("is_recruited = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Images").Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&teams).Error
	return teams, total, err
}

// ListProjects 项目组列表，recruitingOnly 时只返回招募中的
func (r *TeamRepository) ListProjects(ctx context.Context, offset, limit int, recruitingOnly bool) ([]*model.ProjectTeam, int64, error) {
	var teams []*model.ProjectTeam
	var total int64

	query := conn(ctx, r.db).Model(&model.ProjectTeam{}).Where("is_deleted = ?", false)
	if recruitingOnly {
		query = query.Where("is_recruited = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Stacks").Preload("Images").Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&teams).Error
	return teams, total, err
}

// UpdateFields 更新未删除团队的字段，计数列不经过这里
func (r *TeamRepository) UpdateFields(ctx context.Context, kind model.TeamKind, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	res := conn(ctx, r.db).Table(kind.TeamTable()).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceStacks 整体替换项目技术栈
func (r *TeamRepository) ReplaceStacks(ctx context.Context, projectID int64, stacks []string) error {
	db := conn(ctx, r.db)
	if err := db.Where("project_team_id = ?", projectID).Delete(&model.ProjectStack{}).Error; err != nil {
		return err
	}
	if len(stacks) == 0 {
		return nil
	}
	rows := make([]model.ProjectStack, 0, len(stacks))
	for _, s := range stacks {
		rows = append(rows, model.ProjectStack{ProjectTeamID: projectID, Stack: s})
	}
	return db.Create(&rows).Error
}

// SoftDelete 标记删除团队
func (r *TeamRepository) SoftDelete(ctx context.Context, kind model.TeamKind, id int64) error {
	return r.UpdateFields(ctx, kind, id, map[string]interface{}{"is_deleted": true, "is_recruited": false})
}
