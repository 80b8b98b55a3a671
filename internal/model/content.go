package model

import (
	"time"

	"gorm.io/gorm"
)

// Content 可被点赞/收藏的内容，仅由本包内五种内容实现
type Content interface {
	ContentCategory() Category
	ContentID() int64
	Count(kind InteractionKind) int
	content()
}

// Counters 内容行上的反规范化计数
type Counters struct {
	LikeCount     int `gorm:"default:0;not null" json:"like_count"`
	BookmarkCount int `gorm:"default:0;not null" json:"bookmark_count"`
	ViewCount     int `gorm:"default:0;not null" json:"view_count"`
}

// Count 返回指定互动类型的计数
func (c Counters) Count(kind InteractionKind) int {
	if kind == KindBookmark {
		return c.BookmarkCount
	}
	return c.LikeCount
}

// Session 技术分享会
type Session struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Speaker   string    `gorm:"size:100" json:"speaker"`
	VideoURL  string    `gorm:"size:500" json:"video_url"`
	Thumbnail string    `gorm:"size:500" json:"thumbnail"`
	Year      int       `json:"year"`
	Counters  `gorm:"embedded"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Session) TableName() string {
	return "sessions"
}

// Blog 博客，外部博客通过 URL 收录
type Blog struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	UserID    int64          `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	URL       string         `gorm:"size:500" json:"url"`
	Date      *time.Time     `json:"date,omitempty"`
	Category  string         `gorm:"size:20" json:"category"` // SHARED, TECH
	Thumbnail string         `gorm:"size:500" json:"thumbnail"`
	Counters  `gorm:"embedded"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Blog) TableName() string {
	return "blogs"
}

// Resume 简历
type Resume struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	URL       string    `gorm:"size:500" json:"url"`
	Position  string    `gorm:"size:50" json:"position"`
	Category  string    `gorm:"size:20" json:"category"` // PORTFOLIO, RESUME
	IsMain    bool      `gorm:"default:false" json:"is_main"`
	Counters  `gorm:"embedded"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (s *Session) ContentCategory() Category     { return CategorySession }
func (s *Session) ContentID() int64              { return s.ID }
func (*Session) content()                        {}
func (b *Blog) ContentCategory() Category        { return CategoryBlog }
func (b *Blog) ContentID() int64                 { return b.ID }
func (*Blog) content()                           {}
func (r *Resume) ContentCategory() Category      { return CategoryResume }
func (r *Resume) ContentID() int64               { return r.ID }
func (*Resume) content()                         {}
func (p *ProjectTeam) ContentCategory() Category { return CategoryProject }
func (p *ProjectTeam) ContentID() int64          { return p.ID }
func (*ProjectTeam) content()                    {}
func (s *StudyTeam) ContentCategory() Category   { return CategoryStudy }
func (s *StudyTeam) ContentID() int64            { return s.ID }
func (*StudyTeam) content()                      {}
