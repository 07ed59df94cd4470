package project

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/repository"
	"retrack/internal/util"
)

// ErrInvalidInviteCode is returned when a join request carries a code that
// matches no project.
var ErrInvalidInviteCode = errors.New("invalid invite code")

const defaultRole = "member"

type Service struct {
	projects *repository.ProjectRepository
	logger   *zap.Logger
}

func NewService(projects *repository.ProjectRepository, logger *zap.Logger) *Service {
	return &Service{
		projects: projects,
		logger:   logger,
	}
}

// Create inserts a project with a fresh unique invite code and puts the
// creator on the team.
func (s *Service) Create(ctx context.Context, userID int, name, keywords, description string) (int, string, error) {
	inviteCode, err := s.generateUniqueInviteCode(ctx)
	if err != nil {
		return 0, "", err
	}

	projectID, err := s.projects.Insert(ctx, &model.Project{
		Name:        name,
		InviteCode:  inviteCode,
		Keywords:    keywords,
		Description: description,
	})
	if err != nil {
		return 0, "", err
	}

	if err := s.projects.AddTeamMember(ctx, projectID, userID, defaultRole); err != nil {
		return 0, "", err
	}

	return projectID, inviteCode, nil
}

// generateUniqueInviteCode draws random codes until one is unused.
func (s *Service) generateUniqueInviteCode(ctx context.Context) (string, error) {
	for {
		code := util.NewInviteCode()
		count, err := s.projects.CountByInviteCode(ctx, code)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		s.logger.Warn("Invite code collision, retrying", zap.String("code", code))
	}
}

// Join resolves an invite code and adds the user to that project's team.
func (s *Service) Join(ctx context.Context, userID int, inviteCode string) (int, error) {
	projectID, err := s.projects.FindIDByInviteCode(ctx, inviteCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInvalidInviteCode
	}
	if err != nil {
		return 0, err
	}

	if err := s.projects.AddTeamMember(ctx, projectID, userID, defaultRole); err != nil {
		return 0, err
	}
	return projectID, nil
}

// Leave removes the user's membership row.
func (s *Service) Leave(ctx context.Context, userID, projectID int) error {
	return s.projects.RemoveTeamMember(ctx, projectID, userID)
}

func (s *Service) List(ctx context.Context, userID int) ([]model.ProjectRef, error) {
	return s.projects.FindByUserID(ctx, userID)
}

func (s *Service) Count(ctx context.Context, userID int) (int, error) {
	return s.projects.CountByUserID(ctx, userID)
}

func (s *Service) Info(ctx context.Context, projectID int) (*model.Project, error) {
	return s.projects.FindByID(ctx, projectID)
}

func (s *Service) Team(ctx context.Context, projectID int) ([]model.TeamMember, error) {
	return s.projects.FindTeamMembers(ctx, projectID)
}
