package model

// Category 互动目标的内容类别
type Category string

const (
	CategorySession Category = "SESSION"
	CategoryBlog    Category = "BLOG"
	CategoryResume  Category = "RESUME"
	CategoryProject Category = "PROJECT"
	CategoryStudy   Category = "STUDY"
)

// Categories 返回全部内容类别，顺序固定
func Categories() []Category {
	return []Category{CategorySession, CategoryBlog, CategoryResume, CategoryProject, CategoryStudy}
}

func (c Category) Valid() bool {
	switch c {
	case CategorySession, CategoryBlog, CategoryResume, CategoryProject, CategoryStudy:
		return true
	}
	return false
}

// InteractionKind 互动类型：点赞或收藏
type InteractionKind string

const (
	KindLike     InteractionKind = "like"
	KindBookmark InteractionKind = "bookmark"
)

// Table 互动记录所在的表
func (k InteractionKind) Table() string {
	switch k {
	case KindBookmark:
		return "bookmarks"
	default:
		return "likes"
	}
}

// CounterColumn 内容表上与该互动类型同步的计数列
func (k InteractionKind) CounterColumn() string {
	switch k {
	case KindBookmark:
		return "bookmark_count"
	default:
		return "like_count"
	}
}

// TeamKind 团队类型
type TeamKind string

const (
	TeamStudy   TeamKind = "study"
	TeamProject TeamKind = "project"
)

func (k TeamKind) Valid() bool {
	return k == TeamStudy || k == TeamProject
}

// MemberTable 团队成员表
func (k TeamKind) MemberTable() string {
	if k == TeamProject {
		return "project_members"
	}
	return "study_members"
}

// TeamTable 团队表
func (k TeamKind) TeamTable() string {
	if k == TeamProject {
		return "project_teams"
	}
	return "study_teams"
}
