package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/repository"
)

// TeamService 研究组/项目组的增删改查，成员相关操作全部交给 MembershipService
type TeamService struct {
	tx         *repository.TxManager
	teams      *repository.TeamRepository
	membership *MembershipService
	log        logrus.FieldLogger
}

func NewTeamService(tx *repository.TxManager, teams *repository.TeamRepository, membership *MembershipService, log logrus.FieldLogger) *TeamService {
	return &TeamService{
		tx:         tx,
		teams:      teams,
		membership: membership,
		log:        log,
	}
}

// Create 创建团队，创建者在同一事务内成为组长
func (s *TeamService) Create(ctx context.Context, kind model.TeamKind, userID int64, req dto.CreateTeamRequest) (*dto.TeamDetail, error) {
	info := model.TeamInfo{
		Name:        req.Name,
		Explain:     req.Explain,
		RecruitNum:  req.RecruitNum,
		IsRecruited: true,
		StartDate:   time.Now(),
		Period:      req.Period,
	}
	if req.StartDate != nil {
		info.StartDate = *req.StartDate
	}

	var teamID int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		switch kind {
		case model.TeamStudy:
			team := &model.StudyTeam{TeamInfo: info, Goal: req.Goal, Rule: req.Rule}
			for i, url := range req.Images {
				team.Images = append(team.Images, model.StudyImage{ImageURL: url, IsMain: i == 0})
			}
			if err := s.teams.CreateStudy(ctx, team); err != nil {
				return classify(err, ErrNotFound)
			}
			teamID = team.ID
		case model.TeamProject:
			team := &model.ProjectTeam{
				TeamInfo:        info,
				ProjectExplain:  req.ProjectExplain,
				FrontendNum:     req.FrontendNum,
				BackendNum:      req.BackendNum,
				DevopsNum:       req.DevopsNum,
				FullStackNum:    req.FullStackNum,
				DataEngineerNum: req.DataEngineerNum,
				GithubLink:      req.GithubLink,
				NotionLink:      req.NotionLink,
			}
			for _, st := range req.Stacks {
				team.Stacks = append(team.Stacks, model.ProjectStack{Stack: st})
			}
			for i, url := range req.Images {
				team.Images = append(team.Images, model.ProjectImage{ImageURL: url, IsMain: i == 0})
			}
			if err := s.teams.CreateProject(ctx, team); err != nil {
				return classify(err, ErrNotFound)
			}
			teamID = team.ID
		default:
			return ErrNotFound
		}

		_, err := s.membership.EnrollFounder(ctx, kind, teamID, userID, req.LeaderRole)
		return err
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"team_kind": kind, "user_id": userID}).WithError(err).Error("create team failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"team_kind": kind, "team_id": teamID, "user_id": userID}).Info("team created")
	return s.Get(ctx, kind, teamID)
}

// Get 团队详情，附在组成员
func (s *TeamService) Get(ctx context.Context, kind model.TeamKind, teamID int64) (*dto.TeamDetail, error) {
	var detail *dto.TeamDetail
	switch kind {
	case model.TeamStudy:
		team, err := s.teams.GetStudy(ctx, teamID)
		if err != nil {
			return nil, classify(err, ErrTeamNotFound.With("team_id", teamID))
		}
		detail = studyDetail(team)
	case model.TeamProject:
		team, err := s.teams.GetProject(ctx, teamID)
		if err != nil {
			return nil, classify(err, ErrTeamNotFound.With("team_id", teamID))
		}
		detail = projectDetail(team)
	default:
		return nil, ErrTeamNotFound.With("team_id", teamID)
	}

	members, err := s.membership.Members(ctx, kind, teamID)
	if err != nil {
		return nil, err
	}
	detail.Members = members
	return detail, nil
}

// List 团队列表
func (s *TeamService) List(ctx context.Context, kind model.TeamKind, req dto.ListTeamsRequest) ([]*dto.TeamDetail, int64, error) {
	var (
		out   []*dto.TeamDetail
		total int64
	)
	switch kind {
	case model.TeamStudy:
		teams, n, err := s.teams.ListStudies(ctx, req.Offset, req.Limit, req.RecruitingOnly)
		if err != nil {
			return nil, 0, classify(err, ErrNotFound)
		}
		for _, t := range teams {
			out = append(out, studyDetail(t))
		}
		total = n
	case model.TeamProject:
		teams, n, err := s.teams.ListProjects(ctx, req.Offset, req.Limit, req.RecruitingOnly)
		if err != nil {
			return nil, 0, classify(err, ErrNotFound)
		}
		for _, t := range teams {
			out = append(out, projectDetail(t))
		}
		total = n
	default:
		return nil, 0, ErrNotFound
	}
	if out == nil {
		out = []*dto.TeamDetail{}
	}
	return out, total, nil
}

// Update 组长修改团队信息
func (s *TeamService) Update(ctx context.Context, kind model.TeamKind, teamID, actingID int64, req dto.UpdateTeamRequest) (*dto.TeamDetail, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Explain != nil {
		fields["explain"] = *req.Explain
	}
	if req.RecruitNum != nil {
		fields["recruit_num"] = *req.RecruitNum
	}
	if req.Period != nil {
		fields["period"] = *req.Period
	}
	if req.IsFinished != nil {
		fields["is_finished"] = *req.IsFinished
	}
	switch kind {
	case model.TeamStudy:
		if req.Goal != nil {
			fields["goal"] = *req.Goal
		}
		if req.Rule != nil {
			fields["rule"] = *req.Rule
		}
	case model.TeamProject:
		if req.ProjectExplain != nil {
			fields["project_explain"] = *req.ProjectExplain
		}
		if req.GithubLink != nil {
			fields["github_link"] = *req.GithubLink
		}
		if req.NotionLink != nil {
			fields["notion_link"] = *req.NotionLink
		}
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard(ctx, kind, teamID, actingID); err != nil {
			return err
		}
		if err := s.teams.UpdateFields(ctx, kind, teamID, fields); err != nil {
			return classify(err, ErrTeamNotFound.With("team_id", teamID))
		}
		if kind == model.TeamProject && req.Stacks != nil {
			return classify(s.teams.ReplaceStacks(ctx, teamID, *req.Stacks), ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, kind, teamID)
}

// Close 停止招募，之后的申请返回 ErrTeamClosed
func (s *TeamService) Close(ctx context.Context, kind model.TeamKind, teamID, actingID int64) (*dto.TeamDetail, error) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard(ctx, kind, teamID, actingID); err != nil {
			return err
		}
		return classify(s.teams.UpdateFields(ctx, kind, teamID, map[string]interface{}{"is_recruited": false}),
			ErrTeamNotFound.With("team_id", teamID))
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"team_kind": kind, "team_id": teamID, "user_id": actingID}).Info("team recruiting closed")
	return s.Get(ctx, kind, teamID)
}

// Delete 软删除团队
func (s *TeamService) Delete(ctx context.Context, kind model.TeamKind, teamID, actingID int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard(ctx, kind, teamID, actingID); err != nil {
			return err
		}
		return classify(s.teams.SoftDelete(ctx, kind, teamID), ErrTeamNotFound.With("team_id", teamID))
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"team_kind": kind, "team_id": teamID, "user_id": actingID}).Info("team deleted")
	return nil
}

// Applicants 待审核申请列表
func (s *TeamService) Applicants(ctx context.Context, kind model.TeamKind, teamID, actingID int64) ([]*dto.MembershipView, error) {
	return s.membership.Applicants(ctx, kind, teamID, actingID)
}

func (s *TeamService) guard(ctx context.Context, kind model.TeamKind, teamID, actingID int64) error {
	if _, err := s.membership.team(ctx, kind, teamID); err != nil {
		return err
	}
	return s.membership.RequireLeader(ctx, kind, teamID, actingID)
}

func teamDetail(kind model.TeamKind, id int64, info model.TeamInfo, counters model.Counters, createdAt time.Time) *dto.TeamDetail {
	return &dto.TeamDetail{
		Kind:        kind,
		ID:          id,
		Name:        info.Name,
		Explain:     info.Explain,
		RecruitNum:  info.RecruitNum,
		IsRecruited: info.IsRecruited,
		IsFinished:  info.IsFinished,
		StartDate:   info.StartDate,
		Period:      info.Period,
		Images:      []string{},
		CounterView: counterView(counters),
		CreatedAt:   createdAt,
	}
}

func studyDetail(t *model.StudyTeam) *dto.TeamDetail {
	d := teamDetail(model.TeamStudy, t.ID, t.TeamInfo, t.Counters, t.CreatedAt)
	d.Goal = t.Goal
	d.Rule = t.Rule
	for _, img := range t.Images {
		d.Images = append(d.Images, img.ImageURL)
	}
	return d
}

func projectDetail(t *model.ProjectTeam) *dto.TeamDetail {
	d := teamDetail(model.TeamProject, t.ID, t.TeamInfo, t.Counters, t.CreatedAt)
	d.ProjectExplain = t.ProjectExplain
	d.FrontendNum = t.FrontendNum
	d.BackendNum = t.BackendNum
	d.DevopsNum = t.DevopsNum
	d.FullStackNum = t.FullStackNum
	d.DataEngineerNum = t.DataEngineerNum
	d.GithubLink = t.GithubLink
	d.NotionLink = t.NotionLink
	d.Stacks = t.StackNames()
	for _, img := range t.Images {
		d.Images = append(d.Images, img.ImageURL)
	}
	return d
}
