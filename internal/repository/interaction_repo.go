package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/crew_server/internal/model"
)

var (
	// ErrInteractionUnchanged 互动已处于目标状态
	ErrInteractionUnchanged = errors.New("interaction already in requested state")
	// ErrContentGone 内容在事务中已不存在
	ErrContentGone = errors.New("content not found")
)

// ToggleResult 切换后的互动记录与内容最新计数
type ToggleResult struct {
	Interaction model.Interaction
	Count       int
}

// InteractedContent 用户的一条互动及其指向的内容
type InteractedContent struct {
	Interaction model.Interaction
	Content     model.Content
}

// CounterDrift 计数列与实际互动数不一致的内容
type CounterDrift struct {
	ContentID int64 `gorm:"column:content_id"`
	Stored    int   `gorm:"column:stored"`
	Actual    int   `gorm:"column:actual"`
}

type InteractionRepository struct {
	db       *gorm.DB
	registry *ContentRegistry
}

func NewInteractionRepository(db *gorm.DB, registry *ContentRegistry) *InteractionRepository {
	return &InteractionRepository{db: db, registry: registry}
}

// ContentExists 内容是否存在且未删除
func (r *InteractionRepository) ContentExists(ctx context.Context, contentID int64, category model.Category) (bool, error) {
	entry, err := r.registry.Lookup(category)
	if err != nil {
		return false, err
	}

	var count int64
	err = conn(ctx, r.db).Model(entry.New()).Scopes(entry.Active).
		Where(entry.Table+".id = ?", contentID).
		Count(&count).Error
	return count > 0, err
}

// Toggle 在一个事务内切换互动状态并同步内容计数
// 状态切换用条件写完成：开启时先尝试恢复已取消的记录，没有再 INSERT ... ON CONFLICT DO NOTHING，
// 两步都没有影响行时说明已是开启状态
func (r *InteractionRepository) Toggle(ctx context.Context, kind model.InteractionKind, userID, contentID int64, category model.Category, desiredOn bool) (*ToggleResult, error) {
	entry, err := r.registry.Lookup(category)
	if err != nil {
		return nil, err
	}

	var result ToggleResult
	err = transaction(ctx, r.db, func(tx *gorm.DB) error {
		// 先锁内容行，同一内容上的切换在此排队，互动表的检查与写入不会交错
		var locked []int64
		if err := tx.Model(entry.New()).Scopes(entry.Active).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(entry.Table+".id = ?", contentID).
			Pluck(entry.Table+".id", &locked).Error; err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrContentGone
		}

		changed, err := r.flip(tx, kind, userID, contentID, category, desiredOn)
		if err != nil {
			return err
		}
		if !changed {
			return ErrInteractionUnchanged
		}

		delta := 1
		if !desiredOn {
			delta = -1
		}
		col := kind.CounterColumn()
		res := tx.Model(entry.New()).Scopes(entry.Active).
			Where(entry.Table+".id = ?", contentID).
			UpdateColumn(col, gorm.Expr(col+" + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrContentGone
		}

		if err := tx.Table(kind.Table()).
			Where("user_id = ? AND content_id = ? AND category = ?", userID, contentID, category).
			Take(&result.Interaction).Error; err != nil {
			return err
		}

		content := entry.New()
		if err := tx.Where("id = ?", contentID).Take(content).Error; err != nil {
			return err
		}
		result.Count = content.Count(kind)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// flip 条件写；返回是否真正发生了状态变化
func (r *InteractionRepository) flip(tx *gorm.DB, kind model.InteractionKind, userID, contentID int64, category model.Category, desiredOn bool) (bool, error) {
	now := time.Now()
	res := tx.Table(kind.Table()).
		Where("user_id = ? AND content_id = ? AND category = ? AND is_deleted = ?", userID, contentID, category, desiredOn).
		Updates(map[string]interface{}{"is_deleted": !desiredOn, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 || !desiredOn {
		return res.RowsAffected > 0, nil
	}

	rec := &model.Interaction{
		UserID:    userID,
		ContentID: contentID,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res = tx.Table(kind.Table()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}, {Name: "category"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsActive 用户对内容的互动是否处于开启状态
func (r *InteractionRepository) IsActive(ctx context.Context, kind model.InteractionKind, userID, contentID int64, category model.Category) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Table(kind.Table()).
		Where("user_id = ? AND content_id = ? AND category = ? AND is_deleted = ?", userID, contentID, category, false).
		Count(&count).Error
	return count > 0, err
}

// ListByUser 用户在某类别下开启中的互动，按最近切换时间倒序
// 已删除内容上的互动不会出现在结果中
func (r *InteractionRepository) ListByUser(ctx context.Context, kind model.InteractionKind, userID int64, category model.Category, offset, limit int) ([]InteractedContent, error) {
	entry, err := r.registry.Lookup(category)
	if err != nil {
		return nil, err
	}
	db := conn(ctx, r.db)

	live := db.Session(&gorm.Session{NewDB: true}).Model(entry.New()).Scopes(entry.Active).Select(entry.Table + ".id")

	var interactions []model.Interaction
	err = db.Table(kind.Table()).
		Where("user_id = ? AND category = ? AND is_deleted = ?", userID, category, false).
		Where("content_id IN (?)", live).
		Order("updated_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return []InteractedContent{}, nil
	}

	ids := make([]int64, 0, len(interactions))
	for _, i := range interactions {
		ids = append(ids, i.ContentID)
	}
	contents, err := entry.Find(entry.WithPreloads(db.Session(&gorm.Session{NewDB: true})), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Content, len(contents))
	for _, c := range contents {
		byID[c.ContentID()] = c
	}

	items := make([]InteractedContent, 0, len(interactions))
	for _, i := range interactions {
		c, ok := byID[i.ContentID]
		if !ok {
			continue
		}
		items = append(items, InteractedContent{Interaction: i, Content: c})
	}
	return items, nil
}

// ReconcileCounters 比对计数列与开启中的互动数，dryRun 为 false 时改写计数列
func (r *InteractionRepository) ReconcileCounters(ctx context.Context, kind model.InteractionKind, category model.Category, dryRun bool) ([]CounterDrift, error) {
	entry, err := r.registry.Lookup(category)
	if err != nil {
		return nil, err
	}

	col := fmt.Sprintf("%s.%s", entry.Table, kind.CounterColumn())
	var drifts []CounterDrift
	err = transaction(ctx, r.db, func(tx *gorm.DB) error {
		err := tx.Model(entry.New()).Scopes(entry.Active).
			Select(fmt.Sprintf("%s.id AS content_id, %s AS stored, COUNT(i.id) AS actual", entry.Table, col)).
			Joins(fmt.Sprintf("LEFT JOIN %s i ON i.content_id = %s.id AND i.category = ? AND i.is_deleted = ?", kind.Table(), entry.Table), category, false).
			Group(fmt.Sprintf("%s.id, %s", entry.Table, col)).
			Having(fmt.Sprintf("%s <> COUNT(i.id)", col)).
			Order(entry.Table + ".id").
			Scan(&drifts).Error
		if err != nil || dryRun || len(drifts) == 0 {
			return err
		}

		// 扫描结果可能已过期：改写时在同一条语句内重新计数，不回写扫描到的值
		ids := make([]int64, 0, len(drifts))
		for _, d := range drifts {
			ids = append(ids, d.ContentID)
		}
		actual := gorm.Expr(fmt.Sprintf(
			"(SELECT COUNT(*) FROM %s i WHERE i.content_id = %s.id AND i.category = ? AND i.is_deleted = ?)",
			kind.Table(), entry.Table), category, false)
		return tx.Model(entry.New()).
			Where(entry.Table+".id IN ?", ids).
			UpdateColumn(kind.CounterColumn(), actual).Error
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
