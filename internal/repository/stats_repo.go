package repository

import (
	"context"

	"go.uber.org/zap"

	"retrack/internal/model"
)

type StatsRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewStatsRepository(db Querier, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{db: db, logger: logger}
}

// ProjectTaskStats aggregates task completion over every project the user
// belongs to.
func (r *StatsRepository) ProjectTaskStats(ctx context.Context, userID int) (model.TaskStats, error) {
	query := `
        SELECT
            COUNT(CASE WHEN completed = TRUE THEN 1 END) AS completed_tasks,
            COUNT(CASE WHEN completed = FALSE OR completed IS NULL THEN 1 END) AS pending_tasks,
            COUNT(*) AS total_tasks
        FROM tasks
        WHERE milestone_id IN (
            SELECT id FROM milestones
            WHERE project_id IN (
                SELECT project_id FROM project_team WHERE user_id = $1
            )
        )
    `
	var s model.TaskStats
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.CompletedTasks, &s.PendingTasks, &s.TotalTasks)
	if err != nil {
		r.logger.Error("Failed to query project task stats", zap.Error(err), zap.Int("user_id", userID))
	}
	return s, err
}

// AssignedTaskStats aggregates completion over tasks assigned to the user.
func (r *StatsRepository) AssignedTaskStats(ctx context.Context, userID int) (model.TaskStats, error) {
	query := `
        SELECT
            COUNT(CASE WHEN t.completed = TRUE THEN 1 END) AS completed_tasks,
            COUNT(CASE WHEN t.completed = FALSE OR t.completed IS NULL THEN 1 END) AS pending_tasks,
            COUNT(*) AS total_tasks
        FROM tasks t
        JOIN task_assignees ta ON t.id = ta.task_id
        WHERE ta.user_id = $1
    `
	var s model.TaskStats
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.CompletedTasks, &s.PendingTasks, &s.TotalTasks)
	if err != nil {
		r.logger.Error("Failed to query assigned task stats", zap.Error(err), zap.Int("user_id", userID))
	}
	return s, err
}

func (r *StatsRepository) ProjectPriorityDistribution(ctx context.Context, userID int) ([]model.PriorityCount, error) {
	query := `
        SELECT label AS priority, COUNT(*) AS count
        FROM tasks
        WHERE milestone_id IN (
            SELECT id FROM milestones
            WHERE project_id IN (
                SELECT project_id FROM project_team WHERE user_id = $1
            )
        )
        GROUP BY label
    `
	return r.queryPriorityCounts(ctx, query, userID)
}

func (r *StatsRepository) AssignedPriorityDistribution(ctx context.Context, userID int) ([]model.PriorityCount, error) {
	query := `
        SELECT t.label AS priority, COUNT(*) AS count
        FROM tasks t
        JOIN task_assignees ta ON t.id = ta.task_id
        WHERE ta.user_id = $1
        GROUP BY t.label
    `
	return r.queryPriorityCounts(ctx, query, userID)
}

func (r *StatsRepository) queryPriorityCounts(ctx context.Context, query string, userID int) ([]model.PriorityCount, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query priority distribution", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	counts := []model.PriorityCount{}
	for rows.Next() {
		var c model.PriorityCount
		if err := rows.Scan(&c.Priority, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ProjectTimeline returns the 20 most recent tasks and milestones across the
// user's projects, newest deadline first.
func (r *StatsRepository) ProjectTimeline(ctx context.Context, userID int) ([]model.TimelineItem, error) {
	query := `
        WITH timeline AS (
            SELECT
                'task' AS type,
                t.id,
                t.name,
                t.deadline AS date,
                t.completed,
                t.label AS priority,
                m.name AS milestone_name,
                p.name AS project_name
            FROM tasks t
            JOIN milestones m ON t.milestone_id = m.id
            JOIN projects p ON m.project_id = p.id
            WHERE m.project_id IN (
                SELECT project_id FROM project_team WHERE user_id = $1
            )
            UNION ALL
            SELECT
                'milestone' AS type,
                m.id,
                m.name,
                m.deadline AS date,
                NULL AS completed,
                NULL AS priority,
                NULL AS milestone_name,
                p.name AS project_name
            FROM milestones m
            JOIN projects p ON m.project_id = p.id
            WHERE m.project_id IN (
                SELECT project_id FROM project_team WHERE user_id = $1
            )
        )
        SELECT type, id, name, date, completed, priority, milestone_name, project_name
        FROM timeline
        ORDER BY date DESC
        LIMIT 20
    `
	return r.queryTimeline(ctx, query, userID)
}

// AssignedTimeline returns the 20 most recent assigned tasks plus the
// milestones that contain them.
func (r *StatsRepository) AssignedTimeline(ctx context.Context, userID int) ([]model.TimelineItem, error) {
	query := `
        WITH user_tasks AS (
            SELECT
                'task' AS type,
                t.id,
                t.name,
                t.deadline AS date,
                t.completed,
                t.label AS priority,
                m.name AS milestone_name,
                p.name AS project_name
            FROM tasks t
            JOIN task_assignees ta ON t.id = ta.task_id
            JOIN milestones m ON t.milestone_id = m.id
            JOIN projects p ON m.project_id = p.id
            WHERE ta.user_id = $1
            UNION ALL
            SELECT
                'milestone' AS type,
                m.id,
                m.name,
                m.deadline AS date,
                NULL AS completed,
                NULL AS priority,
                NULL AS milestone_name,
                p.name AS project_name
            FROM milestones m
            JOIN projects p ON m.project_id = p.id
            WHERE EXISTS (
                SELECT 1 FROM tasks t
                JOIN task_assignees ta ON t.id = ta.task_id
                WHERE t.milestone_id = m.id AND ta.user_id = $1
            )
        )
        SELECT type, id, name, date, completed, priority, milestone_name, project_name
        FROM user_tasks
        ORDER BY date DESC
        LIMIT 20
    `
	return r.queryTimeline(ctx, query, userID)
}

func (r *StatsRepository) queryTimeline(ctx context.Context, query string, userID int) ([]model.TimelineItem, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query timeline", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	items := []model.TimelineItem{}
	for rows.Next() {
		var item model.TimelineItem
		if err := rows.Scan(
			&item.Type, &item.ID, &item.Name, &item.Date,
			&item.Completed, &item.Priority, &item.MilestoneName, &item.ProjectName,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpcomingDeadlines lists the user's next incomplete assigned tasks.
func (r *StatsRepository) UpcomingDeadlines(ctx context.Context, userID int) ([]model.UpcomingDeadline, error) {
	query := `
        SELECT
            t.id,
            t.name,
            t.deadline AS date,
            t.label AS priority,
            p.name AS project_name,
            COALESCE(t.completed, FALSE)
        FROM tasks t
        JOIN task_assignees ta ON t.id = ta.task_id
        JOIN milestones m ON t.milestone_id = m.id
        JOIN projects p ON m.project_id = p.id
        WHERE ta.user_id = $1
          AND t.deadline >= CURRENT_DATE
          AND (t.completed = FALSE OR t.completed IS NULL)
        ORDER BY t.deadline ASC
        LIMIT 10
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query upcoming deadlines", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	items := []model.UpcomingDeadline{}
	for rows.Next() {
		var d model.UpcomingDeadline
		if err := rows.Scan(&d.ID, &d.Name, &d.Date, &d.Priority, &d.ProjectName, &d.Completed); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// ActiveProjects counts the distinct projects the user is a team member of.
func (r *StatsRepository) ActiveProjects(ctx context.Context, userID int) (int, error) {
	query := `
        SELECT COUNT(DISTINCT p.id)
        FROM projects p
        JOIN project_team pt ON p.id = pt.project_id
        WHERE pt.user_id = $1
    `
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count active projects", zap.Error(err), zap.Int("user_id", userID))
		return 0, err
	}
	return count, nil
}

// ProjectRoles lists the user's projects with their role on each team.
func (r *StatsRepository) ProjectRoles(ctx context.Context, userID int) ([]model.ProjectRole, error) {
	query := `
        SELECT p.id, p.name, pt.role
        FROM projects p
        JOIN project_team pt ON p.id = pt.project_id
        WHERE pt.user_id = $1
        ORDER BY p.name
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query project roles", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	items := []model.ProjectRole{}
	for rows.Next() {
		var p model.ProjectRole
		if err := rows.Scan(&p.ID, &p.Name, &p.Role); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
