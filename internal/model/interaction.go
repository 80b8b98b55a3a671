package model

import (
	"time"
)

// Interaction 点赞/收藏记录的通用形态，按 InteractionKind.Table() 读写
// IsDeleted 为 true 表示当前处于"取消"状态，记录本身不会被物理删除
type Interaction struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	ContentID int64     `gorm:"not null" json:"content_id"`
	Category  Category  `gorm:"size:20;not null" json:"category"`
	IsDeleted bool      `gorm:"default:false;not null" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active 互动是否处于开启状态
func (i *Interaction) Active() bool {
	return !i.IsDeleted
}

// Like 点赞表结构，仅用于建表
type Like struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_like_user_content,priority:1"`
	ContentID int64     `gorm:"not null;uniqueIndex:uk_like_user_content,priority:2;index:idx_like_content"`
	Category  Category  `gorm:"size:20;not null;uniqueIndex:uk_like_user_content,priority:3;index:idx_like_content"`
	IsDeleted bool      `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index:idx_like_updated"`
}

func (Like) TableName() string {
	return "likes"
}

// Bookmark 收藏表结构，仅用于建表
type Bookmark struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_bookmark_user_content,priority:1"`
	ContentID int64     `gorm:"not null;uniqueIndex:uk_bookmark_user_content,priority:2;index:idx_bookmark_content"`
	Category  Category  `gorm:"size:20;not null;uniqueIndex:uk_bookmark_user_content,priority:3;index:idx_bookmark_content"`
	IsDeleted bool      `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index:idx_bookmark_updated"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
