package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/repository"
)

// Notifier 成员变动通知；投递失败返回 error，不 panic
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// MembershipService 入组申请、取消、通过、拒绝、直接添加
// 每个操作的写入在一个事务内完成，通知在提交之后发送，失败只记录为警告
type MembershipService struct {
	tx       *repository.TxManager
	members  *repository.MembershipRepository
	teams    *repository.TeamRepository
	users    *repository.UserRepository
	notifier Notifier
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewMembershipService(
	tx *repository.TxManager,
	members *repository.MembershipRepository,
	teams *repository.TeamRepository,
	users *repository.UserRepository,
	notifier Notifier,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *MembershipService {
	return &MembershipService{
		tx:       tx,
		members:  members,
		teams:    teams,
		users:    users,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

func (s *MembershipService) record(kind model.TeamKind, op string, teamID, userID int64, err error) {
	s.metrics.MembershipTransitions.WithLabelValues(string(kind), op, resultLabel(err)).Inc()

	entry := s.log.WithFields(logrus.Fields{
		"team_kind": kind,
		"team_id":   teamID,
		"user_id":   userID,
		"operation": op,
	})
	switch {
	case err == nil:
		entry.Info("membership transition")
	case KindOf(err) == KindStorage:
		entry.WithError(err).Error("membership transition failed")
	case KindOf(err) == KindMissingLeader:
		entry.WithError(err).Error("team has no active leader")
	default:
		entry.WithError(err).Warn("membership transition rejected")
	}
}

// Apply 申请加入团队；团队必须至少有一名在组组长可以接收通知
func (s *MembershipService) Apply(ctx context.Context, kind model.TeamKind, teamID, userID int64, req dto.ApplyRequest) (view *dto.MembershipView, err error) {
	defer func() { s.record(kind, "apply", teamID, userID, err) }()

	var (
		m         *model.Membership
		team      *repository.TeamRef
		applicant *model.User
		leaders   []*model.Membership
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if team, err = s.openTeam(ctx, kind, teamID); err != nil {
			return err
		}
		if applicant, err = s.users.GetByID(ctx, userID); err != nil {
			return classify(err, ErrUserNotFound.With("user_id", userID))
		}

		existing, err := s.members.Find(ctx, kind, teamID, userID)
		switch {
		case err == nil && existing.Active():
			return ErrAlreadyActiveMember.With("team_id", teamID).With("user_id", userID)
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return classify(err, ErrNotFound)
		}

		if leaders, err = s.members.ListLeaders(ctx, kind, teamID); err != nil {
			return classify(err, ErrNotFound)
		}
		if len(leaders) == 0 {
			return ErrMissingLeader.With("team_id", teamID)
		}

		m, err = s.members.UpsertApplication(ctx, kind, teamID, userID, req.Summary, req.TeamRole)
		if errors.Is(err, repository.ErrMemberActive) {
			return ErrAlreadyActiveMember.With("team_id", teamID).With("user_id", userID)
		}
		return classify(err, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}

	notes := make([]model.Notification, 0, len(leaders))
	for _, l := range leaders {
		notes = append(notes, model.Notification{
			RecipientID:      l.UserID,
			RecipientContact: contactOf(l.User),
			TeamKind:         kind,
			TeamID:           teamID,
			TeamName:         team.Name,
			ApplicantID:      userID,
			ApplicantContact: applicant.Email,
			Summary:          req.Summary,
			Outcome:          model.OutcomeApplied,
		})
	}
	return s.view(kind, m, s.notify(ctx, notes...)), nil
}

// Cancel 申请人撤回自己的待审核申请
func (s *MembershipService) Cancel(ctx context.Context, kind model.TeamKind, teamID, userID int64) (view *dto.MembershipView, err error) {
	defer func() { s.record(kind, "cancel", teamID, userID, err) }()

	var m *model.Membership
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		pending, err := s.members.FindPending(ctx, kind, teamID, userID)
		if err != nil {
			return classify(err, ErrApplicationNotFound.With("team_id", teamID).With("user_id", userID))
		}
		m, err = s.members.Cancel(ctx, kind, pending.ID)
		return classify(err, ErrApplicationNotFound)
	})
	if err != nil {
		return nil, err
	}
	return s.view(kind, m, nil), nil
}

// Accept 组长通过申请
func (s *MembershipService) Accept(ctx context.Context, kind model.TeamKind, teamID, actingID, applicantID int64) (view *dto.MembershipView, err error) {
	defer func() { s.record(kind, "accept", teamID, applicantID, err) }()

	var (
		m         *model.Membership
		team      *repository.TeamRef
		applicant *model.User
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if team, err = s.team(ctx, kind, teamID); err != nil {
			return err
		}
		if err := s.RequireLeader(ctx, kind, teamID, actingID); err != nil {
			return err
		}

		pending, err := s.members.FindPending(ctx, kind, teamID, applicantID)
		if err != nil {
			return classify(err, ErrInvalidApplicant.With("team_id", teamID).With("user_id", applicantID))
		}
		if _, err := s.members.SetStatus(ctx, kind, pending.ID, model.StatusPending, model.StatusApproved); err != nil {
			if errors.Is(err, repository.ErrStatusChanged) {
				return ErrInvalidApplicant.With("team_id", teamID).With("user_id", applicantID)
			}
			return classify(err, ErrNotFound)
		}
		if m, err = s.members.Activate(ctx, kind, pending.ID, false); err != nil {
			return classify(err, ErrNotFound)
		}
		applicant, err = s.users.GetByID(ctx, applicantID)
		return classify(err, ErrUserNotFound.With("user_id", applicantID))
	})
	if err != nil {
		return nil, err
	}

	warnings := s.notify(ctx, model.Notification{
		RecipientID:      applicantID,
		RecipientContact: applicant.Email,
		TeamKind:         kind,
		TeamID:           teamID,
		TeamName:         team.Name,
		Outcome:          model.OutcomeAccepted,
	})
	return s.view(kind, m, warnings), nil
}

// Reject 组长拒绝申请；重复拒绝返回 ErrAlreadyRejected
func (s *MembershipService) Reject(ctx context.Context, kind model.TeamKind, teamID, actingID, applicantID int64) (view *dto.MembershipView, err error) {
	defer func() { s.record(kind, "reject", teamID, applicantID, err) }()

	var (
		m         *model.Membership
		team      *repository.TeamRef
		applicant *model.User
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if team, err = s.team(ctx, kind, teamID); err != nil {
			return err
		}
		if err := s.RequireLeader(ctx, kind, teamID, actingID); err != nil {
			return err
		}

		current, err := s.members.Find(ctx, kind, teamID, applicantID)
		if err != nil {
			return classify(err, ErrInvalidApplicant.With("team_id", teamID).With("user_id", applicantID))
		}
		if err := rejectable(current, teamID); err != nil {
			return err
		}

		m, err = s.members.SetStatus(ctx, kind, current.ID, model.StatusPending, model.StatusRejected)
		if errors.Is(err, repository.ErrStatusChanged) {
			// 并发的另一笔迁移先提交了，按最新状态给出结果
			latest, err := s.members.GetByID(ctx, kind, current.ID)
			if err != nil {
				return classify(err, ErrNotFound)
			}
			if err := rejectable(latest, teamID); err != nil {
				return err
			}
			return ErrInvalidApplicant.With("team_id", teamID).With("user_id", applicantID)
		}
		if err != nil {
			return classify(err, ErrNotFound)
		}

		applicant, err = s.users.GetByID(ctx, applicantID)
		return classify(err, ErrUserNotFound.With("user_id", applicantID))
	})
	if err != nil {
		return nil, err
	}

	warnings := s.notify(ctx, model.Notification{
		RecipientID:      applicantID,
		RecipientContact: applicant.Email,
		TeamKind:         kind,
		TeamID:           teamID,
		TeamName:         team.Name,
		Outcome:          model.OutcomeRejected,
	})
	return s.view(kind, m, warnings), nil
}

func rejectable(m *model.Membership, teamID int64) error {
	if m.Status == model.StatusRejected {
		return ErrAlreadyRejected.With("team_id", teamID).With("user_id", m.UserID)
	}
	if !m.Pending() {
		return ErrInvalidApplicant.With("team_id", teamID).With("user_id", m.UserID)
	}
	return nil
}

// AddMember 组长直接添加成员，跳过申请阶段
func (s *MembershipService) AddMember(ctx context.Context, kind model.TeamKind, teamID, actingID int64, req dto.AddMemberRequest) (view *dto.MembershipView, err error) {
	defer func() { s.record(kind, "add_member", teamID, req.UserID, err) }()

	var (
		m      *model.Membership
		team   *repository.TeamRef
		member *model.User
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if team, err = s.team(ctx, kind, teamID); err != nil {
			return err
		}
		if err := s.RequireLeader(ctx, kind, teamID, actingID); err != nil {
			return err
		}
		if member, err = s.users.GetByID(ctx, req.UserID); err != nil {
			return classify(err, ErrUserNotFound.With("user_id", req.UserID))
		}

		existing, err := s.members.Find(ctx, kind, teamID, req.UserID)
		switch {
		case err == nil && existing.Active():
			return ErrAlreadyActiveMember.With("team_id", teamID).With("user_id", req.UserID)
		case err == nil:
			m, err = s.members.Activate(ctx, kind, existing.ID, req.IsLeader)
		case errors.Is(err, gorm.ErrRecordNotFound):
			m, err = s.members.CreateApproved(ctx, kind, teamID, req.UserID, req.IsLeader, req.TeamRole)
		}
		return classify(err, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}

	warnings := s.notify(ctx, model.Notification{
		RecipientID:      req.UserID,
		RecipientContact: member.Email,
		TeamKind:         kind,
		TeamID:           teamID,
		TeamName:         team.Name,
		Outcome:          model.OutcomeAdded,
	})
	return s.view(kind, m, warnings), nil
}

// EnrollFounder 创建团队时把创建者登记为组长，需在创建团队的事务内调用
func (s *MembershipService) EnrollFounder(ctx context.Context, kind model.TeamKind, teamID, userID int64, teamRole string) (*model.Membership, error) {
	m, err := s.members.CreateApproved(ctx, kind, teamID, userID, true, teamRole)
	if err != nil {
		return nil, classify(err, ErrNotFound)
	}
	return m, nil
}

// RequireLeader 操作者须为在组组长，平台管理员不受限制
func (s *MembershipService) RequireLeader(ctx context.Context, kind model.TeamKind, teamID, actingID int64) error {
	actor, err := s.users.GetByID(ctx, actingID)
	if err != nil {
		return classify(err, ErrForbidden.With("user_id", actingID))
	}
	if actor.IsAdmin() {
		return nil
	}

	m, err := s.members.FindActive(ctx, kind, teamID, actingID)
	if err != nil {
		return classify(err, ErrForbidden.With("team_id", teamID).With("user_id", actingID))
	}
	if !m.IsLeader {
		return ErrForbidden.With("team_id", teamID).With("user_id", actingID)
	}
	return nil
}

// Members 在组成员
func (s *MembershipService) Members(ctx context.Context, kind model.TeamKind, teamID int64) ([]*dto.MembershipView, error) {
	members, err := s.members.ListActive(ctx, kind, teamID)
	if err != nil {
		return nil, classify(err, ErrNotFound)
	}
	return s.views(kind, members), nil
}

// Applicants 待审核申请，仅组长可见
func (s *MembershipService) Applicants(ctx context.Context, kind model.TeamKind, teamID, actingID int64) ([]*dto.MembershipView, error) {
	if _, err := s.team(ctx, kind, teamID); err != nil {
		return nil, err
	}
	if err := s.RequireLeader(ctx, kind, teamID, actingID); err != nil {
		return nil, err
	}
	pending, err := s.members.ListPending(ctx, kind, teamID)
	if err != nil {
		return nil, classify(err, ErrNotFound)
	}
	return s.views(kind, pending), nil
}

func (s *MembershipService) team(ctx context.Context, kind model.TeamKind, teamID int64) (*repository.TeamRef, error) {
	team, err := s.teams.GetRef(ctx, kind, teamID)
	if err != nil {
		return nil, classify(err, ErrTeamNotFound.With("team_id", teamID))
	}
	return team, nil
}

func (s *MembershipService) openTeam(ctx context.Context, kind model.TeamKind, teamID int64) (*repository.TeamRef, error) {
	team, err := s.team(ctx, kind, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsRecruited || team.IsFinished {
		return nil, ErrTeamClosed.With("team_id", teamID)
	}
	return team, nil
}

// notify 逐条发送，失败的通知转成警告返回
func (s *MembershipService) notify(ctx context.Context, notes ...model.Notification) []string {
	var warnings []string
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.metrics.NotificationFailures.WithLabelValues(string(n.Outcome)).Inc()
			s.log.WithFields(logrus.Fields{
				"team_kind":    n.TeamKind,
				"team_id":      n.TeamID,
				"recipient_id": n.RecipientID,
				"outcome":      n.Outcome,
			}).WithError(err).Warn("notification failed")
			warnings = append(warnings, fmt.Sprintf("通知用户 %d 失败", n.RecipientID))
		}
	}
	return warnings
}

func (s *MembershipService) view(kind model.TeamKind, m *model.Membership, warnings []string) *dto.MembershipView {
	return &dto.MembershipView{
		ID:        m.ID,
		TeamKind:  kind,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		IsLeader:  m.IsLeader,
		TeamRole:  m.TeamRole,
		Summary:   m.Summary,
		Status:    m.Status,
		IsDeleted: m.IsDeleted,
		UpdatedAt: m.UpdatedAt,
		User:      userBrief(m.User),
		Warnings:  warnings,
	}
}

func (s *MembershipService) views(kind model.TeamKind, members []*model.Membership) []*dto.MembershipView {
	out := make([]*dto.MembershipView, 0, len(members))
	for _, m := range members {
		out = append(out, s.view(kind, m, nil))
	}
	return out
}

func contactOf(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
