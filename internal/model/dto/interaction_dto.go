package dto

import (
	"time"

	"github.com/qs3c/crew_server/internal/model"
)

// LikeRequest 点赞切换请求
type LikeRequest struct {
	Category   model.Category `json:"category" binding:"required,category"`
	ContentID  int64          `json:"content_id" binding:"required,gt=0"`
	LikeStatus *bool          `json:"like_status" binding:"required"`
}

// BookmarkRequest 收藏切换请求
type BookmarkRequest struct {
	Category       model.Category `json:"category" binding:"required,category"`
	ContentID      int64          `json:"content_id" binding:"required,gt=0"`
	BookmarkStatus *bool          `json:"bookmark_status" binding:"required"`
}

// ToggleRequest 服务层的切换参数
type ToggleRequest struct {
	Category  model.Category
	ContentID int64
	DesiredOn bool
}

// ToggleResponse 切换结果
type ToggleResponse struct {
	ContentID int64          `json:"content_id"`
	Category  model.Category `json:"category"`
	Active    bool           `json:"active"`
	Count     int            `json:"count"`
}

// ListInteractionsRequest 我的点赞/收藏列表
type ListInteractionsRequest struct {
	Category model.Category `form:"category" binding:"required,category"`
	Offset   int            `form:"offset,default=0" binding:"gte=0"`
	Limit    int            `form:"limit,default=10" binding:"gte=1,lte=50"`
}

// InteractionStateRequest 详情页互动状态查询
type InteractionStateRequest struct {
	Category  model.Category `form:"category" binding:"required,category"`
	ContentID int64          `form:"content_id" binding:"required,gt=0"`
}

// InteractionState 当前用户对内容的互动状态
type InteractionState struct {
	ContentID  int64          `json:"content_id"`
	Category   model.Category `json:"category"`
	Liked      bool           `json:"liked"`
	Bookmarked bool           `json:"bookmarked"`
}

// InteractedItem 列表项：Content 为五种内容投影之一
type InteractedItem struct {
	InteractionID int64          `json:"interaction_id"`
	Category      model.Category `json:"category"`
	ToggledAt     time.Time      `json:"toggled_at"`
	Content       interface{}    `json:"content"`
}

// UserBrief 作者信息
type UserBrief struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

// CounterView 内容计数
type CounterView struct {
	LikeCount     int `json:"like_count"`
	BookmarkCount int `json:"bookmark_count"`
	ViewCount     int `json:"view_count"`
}

type SessionItem struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Speaker   string     `json:"speaker"`
	VideoURL  string     `json:"video_url"`
	Thumbnail string     `json:"thumbnail"`
	Year      int        `json:"year"`
	User      *UserBrief `json:"user,omitempty"`
	CounterView
}

type BlogItem struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Date      *time.Time `json:"date,omitempty"`
	Category  string     `json:"category"`
	Thumbnail string     `json:"thumbnail"`
	User      *UserBrief `json:"user,omitempty"`
	CounterView
}

type ResumeItem struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Position string     `json:"position"`
	Category string     `json:"category"`
	IsMain   bool       `json:"is_main"`
	User     *UserBrief `json:"user,omitempty"`
	CounterView
}

type ProjectItem struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	ProjectExplain string   `json:"project_explain"`
	RecruitNum     int      `json:"recruit_num"`
	IsRecruited    bool     `json:"is_recruited"`
	IsFinished     bool     `json:"is_finished"`
	MainImage      string   `json:"main_image"`
	Stacks         []string `json:"stacks"`
	CounterView
}

type StudyItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Goal        string `json:"goal"`
	RecruitNum  int    `json:"recruit_num"`
	IsRecruited bool   `json:"is_recruited"`
	IsFinished  bool   `json:"is_finished"`
	MainImage   string `json:"main_image"`
	CounterView
}
