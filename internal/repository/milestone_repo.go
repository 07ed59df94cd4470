package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
)

type MilestoneRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewMilestoneRepository(db Querier, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts a milestone inside the caller's transaction and returns
// the generated id.
func (r *MilestoneRepository) InsertTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) (int, error) {
	r.logger.Debug("Inserting milestone",
		zap.Int("project_id", m.ProjectID),
		zap.String("name", m.Name),
	)

	query := `
        INSERT INTO milestones (name, deadline, project_id)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query, m.Name, m.Deadline, m.ProjectID).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// UpdateTx updates a milestone's name and deadline inside the caller's
// transaction.
func (r *MilestoneRepository) UpdateTx(ctx context.Context, tx pgx.Tx, id int, name string, deadline time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE milestones SET name = $1, deadline = $2 WHERE id = $3`,
		name, deadline, id,
	)
	if err != nil {
		r.logger.Error("Failed to update milestone", zap.Error(err), zap.Int("id", id))
	}
	return err
}

func (r *MilestoneRepository) FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error) {
	query := `
        SELECT id, name, deadline, project_id
        FROM milestones
        WHERE project_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to find milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(&m.ID, &m.Name, &m.Deadline, &m.ProjectID); err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
