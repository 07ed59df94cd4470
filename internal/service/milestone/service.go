// Package milestone converges stored milestone and task rows to the desired
// state a client submits: full insertion on create, differential
// update/insert/delete on update, with assignee sets overwritten exactly.
package milestone

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/repository"
	"retrack/pkg/metrics"
)

const dateLayout = "2006-01-02"

var deadlinePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError reports a malformed field before any row is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// parseDeadline enforces the strict YYYY-MM-DD contract.
func parseDeadline(field, value string) (time.Time, error) {
	if !deadlinePattern.MatchString(value) {
		return time.Time{}, &ValidationError{Field: field, Reason: "invalid date format, expected YYYY-MM-DD"}
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "invalid date"}
	}
	return t, nil
}

// TaskInput is one desired task. A nil ID means the task does not exist yet.
type TaskInput struct {
	ID         *int
	Name       string
	Deadline   string
	Priority   string
	AssignedTo []int
}

type CreateInput struct {
	Name      string
	Deadline  string
	ProjectID int
	Tasks     []TaskInput
}

type UpdateInput struct {
	ID       int
	Name     string
	Deadline string
	Tasks    []TaskInput
}

// DB is the transactional entry point; satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db         DB
	milestones *repository.MilestoneRepository
	tasks      *repository.TaskRepository
	literature *repository.LiteratureRepository
	logger     *zap.Logger
}

func NewService(
	db DB,
	milestones *repository.MilestoneRepository,
	tasks *repository.TaskRepository,
	literature *repository.LiteratureRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:         db,
		milestones: milestones,
		tasks:      tasks,
		literature: literature,
		logger:     logger,
	}
}

// Create inserts a milestone and its tasks with their assignees in one
// transaction. All deadlines are validated before the first statement, so a
// malformed date never leaves a partial write behind. Returns the generated
// milestone id and one task id per input task, in input order.
func (s *Service) Create(ctx context.Context, in CreateInput) (int, []int, error) {
	deadline, err := parseDeadline("deadline", in.Deadline)
	if err != nil {
		return 0, nil, err
	}
	taskDeadlines := make([]time.Time, len(in.Tasks))
	for i, t := range in.Tasks {
		d, err := parseDeadline(fmt.Sprintf("tasks[%d].deadline", i), t.Deadline)
		if err != nil {
			return 0, nil, err
		}
		taskDeadlines[i] = d
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(err))
		metrics.IncrementMilestoneSync("create", "failed")
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	milestoneID, err := s.milestones.InsertTx(ctx, tx, &model.Milestone{
		Name:      in.Name,
		Deadline:  deadline,
		ProjectID: in.ProjectID,
	})
	if err != nil {
		metrics.IncrementMilestoneSync("create", "failed")
		return 0, nil, err
	}

	taskIDs := make([]int, 0, len(in.Tasks))
	for i, t := range in.Tasks {
		taskID, err := s.tasks.InsertTx(ctx, tx, &model.Task{
			Name:        t.Name,
			Deadline:    taskDeadlines[i],
			Label:       t.Priority,
			MilestoneID: milestoneID,
		})
		if err != nil {
			metrics.IncrementMilestoneSync("create", "failed")
			return 0, nil, err
		}
		taskIDs = append(taskIDs, taskID)

		if err := s.tasks.InsertAssigneesTx(ctx, tx, taskID, t.AssignedTo); err != nil {
			metrics.IncrementMilestoneSync("create", "failed")
			return 0, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("Failed to commit milestone create", zap.Error(err))
		metrics.IncrementMilestoneSync("create", "failed")
		return 0, nil, err
	}

	s.logger.Info("Milestone created",
		zap.Int("milestone_id", milestoneID),
		zap.Int("project_id", in.ProjectID),
		zap.Int("tasks", len(taskIDs)),
	)
	metrics.IncrementMilestoneSync("create", "success")
	return milestoneID, taskIDs, nil
}

// Update converges a milestone's stored tasks to the submitted list in one
// transaction: tasks absent from the list are deleted, tasks carrying an id
// are updated in place, tasks without an id are inserted, and every task's
// assignee set is overwritten to exactly match its assignedTo list. Returns
// the ids of every task touched, in input order.
func (s *Service) Update(ctx context.Context, in UpdateInput) ([]int, error) {
	deadline, err := parseDeadline("deadline", in.Deadline)
	if err != nil {
		return nil, err
	}
	taskDeadlines := make([]time.Time, len(in.Tasks))
	for i, t := range in.Tasks {
		d, err := parseDeadline(fmt.Sprintf("tasks[%d].deadline", i), t.Deadline)
		if err != nil {
			return nil, err
		}
		taskDeadlines[i] = d
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(err))
		metrics.IncrementMilestoneSync("update", "failed")
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.milestones.UpdateTx(ctx, tx, in.ID, in.Name, deadline); err != nil {
		metrics.IncrementMilestoneSync("update", "failed")
		return nil, err
	}

	keep := make([]int, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if t.ID != nil {
			keep = append(keep, *t.ID)
		}
	}
	if err := s.tasks.DeleteAbsentTx(ctx, tx, in.ID, keep); err != nil {
		metrics.IncrementMilestoneSync("update", "failed")
		return nil, err
	}

	taskIDs := make([]int, 0, len(in.Tasks))
	for i, t := range in.Tasks {
		var taskID int
		if t.ID != nil {
			taskID = *t.ID
			if err := s.tasks.UpdateTx(ctx, tx, taskID, t.Name, taskDeadlines[i], t.Priority); err != nil {
				metrics.IncrementMilestoneSync("update", "failed")
				return nil, err
			}
		} else {
			taskID, err = s.tasks.InsertTx(ctx, tx, &model.Task{
				Name:        t.Name,
				Deadline:    taskDeadlines[i],
				Label:       t.Priority,
				MilestoneID: in.ID,
			})
			if err != nil {
				metrics.IncrementMilestoneSync("update", "failed")
				return nil, err
			}
		}
		taskIDs = append(taskIDs, taskID)

		if err := s.tasks.ReplaceAssigneesTx(ctx, tx, taskID, t.AssignedTo); err != nil {
			metrics.IncrementMilestoneSync("update", "failed")
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("Failed to commit milestone update", zap.Error(err))
		metrics.IncrementMilestoneSync("update", "failed")
		return nil, err
	}

	s.logger.Info("Milestone updated",
		zap.Int("milestone_id", in.ID),
		zap.Int("tasks", len(taskIDs)),
	)
	metrics.IncrementMilestoneSync("update", "success")
	return taskIDs, nil
}

// ListByProject returns a project's milestones with tasks, assignees and
// linked literature expanded, deadlines rendered as YYYY-MM-DD.
func (s *Service) ListByProject(ctx context.Context, projectID int) ([]model.MilestoneDetail, error) {
	milestones, err := s.milestones.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	details := []model.MilestoneDetail{}
	for _, m := range milestones {
		tasks, err := s.tasks.FindByMilestoneID(ctx, m.ID)
		if err != nil {
			return nil, err
		}

		taskDetails := []model.TaskDetail{}
		for _, t := range tasks {
			assignees, err := s.tasks.FindAssignees(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			literature, err := s.literature.FindByTaskID(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			taskDetails = append(taskDetails, model.TaskDetail{
				ID:         t.ID,
				Name:       t.Name,
				Deadline:   t.Deadline.Format(dateLayout),
				AssignedTo: assignees,
				Priority:   t.Label,
				Literature: literature,
				Completed:  t.Completed,
			})
		}

		details = append(details, model.MilestoneDetail{
			ID:       m.ID,
			Name:     m.Name,
			Deadline: m.Deadline.Format(dateLayout),
			Tasks:    taskDetails,
		})
	}
	return details, nil
}
