package repository

import (
	"context"

	"go.uber.org/zap"

	"retrack/internal/model"
)

type ProjectRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewProjectRepository(db Querier, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.String("invite_code", p.InviteCode),
	)

	query := `
        INSERT INTO projects (invite_code, keywords, description, name)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.InviteCode,
		p.Keywords,
		p.Description,
		p.Name,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", id),
		zap.String("name", p.Name),
	)
	return id, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, name, invite_code, keywords, description, created_on
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.InviteCode, &p.Keywords, &p.Description, &p.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountByInviteCode is used by invite code generation to check uniqueness.
func (r *ProjectRepository) CountByInviteCode(ctx context.Context, inviteCode string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE invite_code = $1`,
		inviteCode,
	).Scan(&count)
	return count, err
}

// FindIDByInviteCode resolves an invite code to a project id. Returns
// pgx.ErrNoRows when the code matches nothing.
func (r *ProjectRepository) FindIDByInviteCode(ctx context.Context, inviteCode string) (int, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`SELECT id FROM projects WHERE invite_code = $1`,
		inviteCode,
	).Scan(&id)
	return id, err
}

func (r *ProjectRepository) AddTeamMember(ctx context.Context, projectID, userID int, role string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO project_team (project_id, user_id, role) VALUES ($1, $2, $3)`,
		projectID, userID, role,
	)
	if err != nil {
		r.logger.Error("Failed to add team member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
	}
	return err
}

func (r *ProjectRepository) RemoveTeamMember(ctx context.Context, projectID, userID int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM project_team WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	)
	if err != nil {
		r.logger.Error("Failed to remove team member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
	}
	return err
}

// FindByUserID lists the projects a user is a team member of.
func (r *ProjectRepository) FindByUserID(ctx context.Context, userID int) ([]model.ProjectRef, error) {
	query := `
        SELECT p.id, p.name
        FROM projects p
        INNER JOIN project_team pm ON p.id = pm.project_id
        WHERE pm.user_id = $1
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	projects := []model.ProjectRef{}
	for rows.Next() {
		var p model.ProjectRef
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) CountByUserID(ctx context.Context, userID int) (int, error) {
	query := `
        SELECT COUNT(p.id)
        FROM projects p
        INNER JOIN project_team pm ON p.id = pm.project_id
        WHERE pm.user_id = $1
    `
	var count int
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// FindTeamMembers lists the users on a project's team.
func (r *ProjectRepository) FindTeamMembers(ctx context.Context, projectID int) ([]model.TeamMember, error) {
	query := `
        SELECT pt.user_id, u.name
        FROM project_team pt
        JOIN users u ON pt.user_id = u.id
        WHERE pt.project_id = $1
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query team members", zap.Error(err), zap.Int("project_id", projectID))
		return nil, err
	}
	defer rows.Close()

	members := []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.UserID, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
