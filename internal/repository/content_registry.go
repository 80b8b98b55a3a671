package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/model"
)

// ErrUnknownCategory 注册表中没有该类别
var ErrUnknownCategory = errors.New("unknown content category")

// ContentTable 某一内容类别的存储描述
type ContentTable struct {
	Category    model.Category
	DisplayName string
	Table       string
	Preloads    []string
	// New 返回该类别的零值模型指针
	New func() model.Content
	// Active 只保留未删除的内容
	Active func(db *gorm.DB) *gorm.DB
	// Find 按 ID 批量读取
	Find func(db *gorm.DB, ids []int64) ([]model.Content, error)
}

// WithPreloads 附加该类别需要预加载的关联
func (t ContentTable) WithPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range t.Preloads {
		db = db.Preload(p)
	}
	return db
}

// ContentRegistry 内容类别到存储表的映射，启动时构建一次后注入
type ContentRegistry struct {
	Session ContentTable
	Blog    ContentTable
	Resume  ContentTable
	Project ContentTable
	Study   ContentTable
}

func NewContentRegistry() *ContentRegistry {
	return &ContentRegistry{
		Session: ContentTable{
			Category:    model.CategorySession,
			DisplayName: "session",
			Table:       "sessions",
			Preloads:    []string{"User"},
			New:         func() model.Content { return &model.Session{} },
			Active:      notDeleted("sessions"),
			Find:        finder[model.Session](),
		},
		Blog: ContentTable{
			Category:    model.CategoryBlog,
			DisplayName: "blog",
			Table:       "blogs",
			Preloads:    []string{"User"},
			New:         func() model.Content { return &model.Blog{} },
			// deleted_at 由 gorm 软删除自动过滤
			Active: func(db *gorm.DB) *gorm.DB { return db },
			Find:   finder[model.Blog](),
		},
		Resume: ContentTable{
			Category:    model.CategoryResume,
			DisplayName: "resume",
			Table:       "resumes",
			Preloads:    []string{"User"},
			New:         func() model.Content { return &model.Resume{} },
			Active:      notDeleted("resumes"),
			Find:        finder[model.Resume](),
		},
		Project: ContentTable{
			Category:    model.CategoryProject,
			DisplayName: "project team",
			Table:       "project_teams",
			Preloads:    []string{"Stacks", "Images"},
			New:         func() model.Content { return &model.ProjectTeam{} },
			Active:      notDeleted("project_teams"),
			Find:        finder[model.ProjectTeam](),
		},
		Study: ContentTable{
			Category:    model.CategoryStudy,
			DisplayName: "study team",
			Table:       "study_teams",
			Preloads:    []string{"Images"},
			New:         func() model.Content { return &model.StudyTeam{} },
			Active:      notDeleted("study_teams"),
			Find:        finder[model.StudyTeam](),
		},
	}
}

// Lookup 按类别取存储描述
func (r *ContentRegistry) Lookup(category model.Category) (ContentTable, error) {
	switch category {
	case model.CategorySession:
		return r.Session, nil
	case model.CategoryBlog:
		return r.Blog, nil
	case model.CategoryResume:
		return r.Resume, nil
	case model.CategoryProject:
		return r.Project, nil
	case model.CategoryStudy:
		return r.Study, nil
	default:
		return ContentTable{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

func notDeleted(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_deleted = ?", false)
	}
}

func finder[T any, PT interface {
	*T
	model.Content
}]() func(*gorm.DB, []int64) ([]model.Content, error) {
	return func(db *gorm.DB, ids []int64) ([]model.Content, error) {
		var rows []T
		if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.Content, 0, len(rows))
		for i := range rows {
			out = append(out, PT(&rows[i]))
		}
		return out, nil
	}
}
