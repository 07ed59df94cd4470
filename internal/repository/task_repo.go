package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
)

type TaskRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewTaskRepository(db Querier, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// InsertTx inserts a task scoped to a milestone inside the caller's
// transaction and returns the generated id.
func (r *TaskRepository) InsertTx(ctx context.Context, tx pgx.Tx, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("milestone_id", t.MilestoneID),
		zap.String("name", t.Name),
		zap.String("label", t.Label),
	)

	query := `
        INSERT INTO tasks (name, deadline, label, milestone_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query, t.Name, t.Deadline, t.Label, t.MilestoneID).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("milestone_id", t.MilestoneID),
		)
		return 0, err
	}
	return id, nil
}

// UpdateTx updates a task's name, deadline and label by id inside the
// caller's transaction.
func (r *TaskRepository) UpdateTx(ctx context.Context, tx pgx.Tx, id int, name string, deadline time.Time, label string) error {
	_, err := tx.Exec(ctx,
		`UPDATE tasks SET name = $2, deadline = $3, label = $4 WHERE id = $1`,
		id, name, deadline, label,
	)
	if err != nil {
		r.logger.Error("Failed to update task", zap.Error(err), zap.Int("task_id", id))
	}
	return err
}

// DeleteAbsentTx removes every task of a milestone whose id is not in keep.
// An empty keep set deletes all of the milestone's tasks.
func (r *TaskRepository) DeleteAbsentTx(ctx context.Context, tx pgx.Tx, milestoneID int, keep []int) error {
	var err error
	if len(keep) > 0 {
		ids := make([]int32, len(keep))
		for i, id := range keep {
			ids[i] = int32(id)
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM tasks WHERE milestone_id = $1 AND NOT (id = ANY($2::int[]))`,
			milestoneID, ids,
		)
	} else {
		_, err = tx.Exec(ctx,
			`DELETE FROM tasks WHERE milestone_id = $1`,
			milestoneID,
		)
	}
	if err != nil {
		r.logger.Error("Failed to delete absent tasks",
			zap.Error(err),
			zap.Int("milestone_id", milestoneID),
			zap.Int("kept", len(keep)),
		)
	}
	return err
}

// ReplaceAssigneesTx overwrites a task's assignee set inside the caller's
// transaction: existing rows are deleted, then one row is inserted per user.
func (r *TaskRepository) ReplaceAssigneesTx(ctx context.Context, tx pgx.Tx, taskID int, userIDs []int) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM task_assignees WHERE task_id = $1`,
		taskID,
	); err != nil {
		r.logger.Error("Failed to clear task assignees", zap.Error(err), zap.Int("task_id", taskID))
		return err
	}
	return r.InsertAssigneesTx(ctx, tx, taskID, userIDs)
}

// InsertAssigneesTx adds one assignee row per user for a task.
func (r *TaskRepository) InsertAssigneesTx(ctx context.Context, tx pgx.Tx, taskID int, userIDs []int) error {
	for _, userID := range userIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)`,
			taskID, userID,
		); err != nil {
			r.logger.Error("Failed to insert task assignee",
				zap.Error(err),
				zap.Int("task_id", taskID),
				zap.Int("user_id", userID),
			)
			return err
		}
	}
	return nil
}

func (r *TaskRepository) FindByMilestoneID(ctx context.Context, milestoneID int) ([]model.Task, error) {
	query := `
        SELECT id, name, deadline, label, COALESCE(completed, FALSE), milestone_id
        FROM tasks
        WHERE milestone_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, milestoneID)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err), zap.Int("milestone_id", milestoneID))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Deadline, &t.Label, &t.Completed, &t.MilestoneID); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// FindAssignees returns the user ids assigned to a task.
func (r *TaskRepository) FindAssignees(ctx context.Context, taskID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM task_assignees WHERE task_id = $1`,
		taskID,
	)
	if err != nil {
		r.logger.Error("Failed to query task assignees", zap.Error(err), zap.Int("task_id", taskID))
		return nil, err
	}
	defer rows.Close()

	userIDs := []int{}
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, rows.Err()
}

// SetCompleted flips a task's completion flag.
func (r *TaskRepository) SetCompleted(ctx context.Context, taskID int, completed bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE tasks SET completed = $2 WHERE id = $1`,
		taskID, completed,
	)
	if err != nil {
		r.logger.Error("Failed to update task completion",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return err
	}
	r.logger.Info("Task completion updated",
		zap.Int("task_id", taskID),
		zap.Bool("completed", completed),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
