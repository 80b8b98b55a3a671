package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/repository"
)

// InteractionService 点赞与收藏共用的切换引擎，kind 决定读写哪张表和哪一列计数
type InteractionService struct {
	kind    model.InteractionKind
	repo    *repository.InteractionRepository
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func newInteractionService(kind model.InteractionKind, repo *repository.InteractionRepository, m *metrics.Metrics, log logrus.FieldLogger) *InteractionService {
	return &InteractionService{
		kind:    kind,
		repo:    repo,
		metrics: m,
		log:     log.WithField("interaction", string(kind)),
	}
}

// NewLikeService 点赞
func NewLikeService(repo *repository.InteractionRepository, m *metrics.Metrics, log logrus.FieldLogger) *InteractionService {
	return newInteractionService(model.KindLike, repo, m, log)
}

// NewBookmarkService 收藏
func NewBookmarkService(repo *repository.InteractionRepository, m *metrics.Metrics, log logrus.FieldLogger) *InteractionService {
	return newInteractionService(model.KindBookmark, repo, m, log)
}

func (s *InteractionService) Kind() model.InteractionKind {
	return s.kind
}

// Toggle 切换互动状态
func (s *InteractionService) Toggle(ctx context.Context, userID int64, req dto.ToggleRequest) (resp *dto.ToggleResponse, err error) {
	fields := logrus.Fields{
		"user_id":    userID,
		"content_id": req.ContentID,
		"category":   req.Category,
		"desired_on": req.DesiredOn,
	}
	defer func() {
		s.metrics.InteractionToggles.WithLabelValues(string(s.kind), string(req.Category), resultLabel(err)).Inc()
		if KindOf(err) == KindStorage && err != nil {
			s.log.WithFields(fields).WithError(err).Error("toggle failed")
		}
	}()

	exists, err := s.repo.ContentExists(ctx, req.ContentID, req.Category)
	if err != nil {
		return nil, s.repoError(err, req)
	}
	if !exists {
		return nil, ErrContentNotFound.With("content_id", req.ContentID)
	}

	result, err := s.repo.Toggle(ctx, s.kind, userID, req.ContentID, req.Category, req.DesiredOn)
	if err != nil {
		return nil, s.repoError(err, req)
	}

	s.log.WithFields(fields).WithField("count", result.Count).Info("interaction toggled")

	return &dto.ToggleResponse{
		ContentID: req.ContentID,
		Category:  req.Category,
		Active:    result.Interaction.Active(),
		Count:     result.Count,
	}, nil
}

// List 用户在某类别下开启中的互动，按类别投影为对应的响应结构
func (s *InteractionService) List(ctx context.Context, userID int64, req dto.ListInteractionsRequest) ([]*dto.InteractedItem, error) {
	rows, err := s.repo.ListByUser(ctx, s.kind, userID, req.Category, req.Offset, req.Limit)
	if err != nil {
		return nil, s.repoError(err, dto.ToggleRequest{Category: req.Category})
	}

	items := make([]*dto.InteractedItem, 0, len(rows))
	for _, row := range rows {
		content, err := projectContent(row.Content)
		if err != nil {
			return nil, err
		}
		items = append(items, &dto.InteractedItem{
			InteractionID: row.Interaction.ID,
			Category:      row.Interaction.Category,
			ToggledAt:     row.Interaction.UpdatedAt,
			Content:       content,
		})
	}
	return items, nil
}

// IsActive 用户对内容的互动是否开启
func (s *InteractionService) IsActive(ctx context.Context, userID, contentID int64, category model.Category) (bool, error) {
	if !category.Valid() {
		return false, ErrInvalidCategory
	}
	active, err := s.repo.IsActive(ctx, s.kind, userID, contentID, category)
	if err != nil {
		return false, classify(err, ErrContentNotFound)
	}
	return active, nil
}

// Reconcile 按开启中的互动重算所有类别的计数列，返回被改写的内容数
func (s *InteractionService) Reconcile(ctx context.Context, dryRun bool) (int, error) {
	total := 0
	for _, category := range model.Categories() {
		drifts, err := s.repo.ReconcileCounters(ctx, s.kind, category, dryRun)
		if err != nil {
			return total, classify(err, ErrNotFound)
		}
		for _, d := range drifts {
			s.log.WithFields(logrus.Fields{
				"category":   category,
				"content_id": d.ContentID,
				"stored":     d.Stored,
				"actual":     d.Actual,
				"dry_run":    dryRun,
			}).Warn("counter drift")
		}
		if !dryRun && len(drifts) > 0 {
			s.metrics.CounterDriftFixed.WithLabelValues(string(s.kind), string(category)).Add(float64(len(drifts)))
		}
		total += len(drifts)
	}
	return total, nil
}

func (s *InteractionService) repoError(err error, req dto.ToggleRequest) error {
	switch {
	case errors.Is(err, repository.ErrUnknownCategory):
		return ErrInvalidCategory
	case errors.Is(err, repository.ErrInteractionUnchanged):
		return ErrDuplicateInteraction.With("content_id", req.ContentID)
	case errors.Is(err, repository.ErrContentGone):
		return ErrContentNotFound.With("content_id", req.ContentID)
	}
	return classify(err, ErrContentNotFound)
}

// projectContent 把五种内容投影为对外的稳定结构
func projectContent(c model.Content) (interface{}, error) {
	switch v := c.(type) {
	case *model.Session:
		return &dto.SessionItem{
			ID:          v.ID,
			Title:       v.Title,
			Speaker:     v.Speaker,
			VideoURL:    v.VideoURL,
			Thumbnail:   v.Thumbnail,
			Year:        v.Year,
			User:        userBrief(v.User),
			CounterView: counterView(v.Counters),
		}, nil
	case *model.Blog:
		return &dto.BlogItem{
			ID:          v.ID,
			Title:       v.Title,
			URL:         v.URL,
			Date:        v.Date,
			Category:    v.Category,
			Thumbnail:   v.Thumbnail,
			User:        userBrief(v.User),
			CounterView: counterView(v.Counters),
		}, nil
	case *model.Resume:
		return &dto.ResumeItem{
			ID:          v.ID,
			Title:       v.Title,
			URL:         v.URL,
			Position:    v.Position,
			Category:    v.Category,
			IsMain:      v.IsMain,
			User:        userBrief(v.User),
			CounterView: counterView(v.Counters),
		}, nil
	case *model.ProjectTeam:
		return &dto.ProjectItem{
			ID:             v.ID,
			Name:           v.Name,
			ProjectExplain: v.ProjectExplain,
			RecruitNum:     v.RecruitNum,
			IsRecruited:    v.IsRecruited,
			IsFinished:     v.IsFinished,
			MainImage:      v.MainImage(),
			Stacks:         v.StackNames(),
			CounterView:    counterView(v.Counters),
		}, nil
	case *model.StudyTeam:
		return &dto.StudyItem{
			ID:          v.ID,
			Name:        v.Name,
			Goal:        v.Goal,
			RecruitNum:  v.RecruitNum,
			IsRecruited: v.IsRecruited,
			IsFinished:  v.IsFinished,
			MainImage:   v.MainImage(),
			CounterView: counterView(v.Counters),
		}, nil
	default:
		return nil, ErrInvalidCategory
	}
}

func userBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

func counterView(c model.Counters) dto.CounterView {
	return dto.CounterView{LikeCount: c.LikeCount, BookmarkCount: c.BookmarkCount, ViewCount: c.ViewCount}
}
