package repository

import (
	"context"

	"go.uber.org/zap"

	"retrack/internal/model"
)

type LiteratureRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewLiteratureRepository(db Querier, logger *zap.Logger) *LiteratureRepository {
	return &LiteratureRepository{db: db, logger: logger}
}

func (r *LiteratureRepository) Insert(ctx context.Context, l *model.Literature) error {
	r.logger.Debug("Inserting literature",
		zap.String("url_id", l.URLID),
		zap.Int("user_id", l.UserID),
		zap.String("source", l.Source),
	)

	query := `
        INSERT INTO literature (url_id, title, authors, source, read, user_id, upload_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query,
		l.URLID, l.Title, l.Authors, l.Source, l.Read, l.UserID, l.UploadDate,
	)
	if err != nil {
		r.logger.Error("Failed to insert literature", zap.Error(err), zap.String("url_id", l.URLID))
	}
	return err
}

func (r *LiteratureRepository) FindByUserID(ctx context.Context, userID int) ([]model.Literature, error) {
	query := `
        SELECT url_id, title, authors, source, read, user_id, upload_date
        FROM literature
        WHERE user_id = $1
        ORDER BY upload_date DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query literature", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	items := []model.Literature{}
	for rows.Next() {
		var l model.Literature
		if err := rows.Scan(&l.URLID, &l.Title, &l.Authors, &l.Source, &l.Read, &l.UserID, &l.UploadDate); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// FindByTaskID returns the literature items linked to a task.
func (r *LiteratureRepository) FindByTaskID(ctx context.Context, taskID int) ([]model.Literature, error) {
	query := `
        SELECT l.url_id, l.title, l.authors, l.source, l.read, l.user_id, l.upload_date
        FROM literature l
        JOIN task_literature tl ON l.url_id = tl.url_id
        WHERE tl.task_id = $1
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query task literature", zap.Error(err), zap.Int("task_id", taskID))
		return nil, err
	}
	defer rows.Close()

	items := []model.Literature{}
	for rows.Next() {
		var l model.Literature
		if err := rows.Scan(&l.URLID, &l.Title, &l.Authors, &l.Source, &l.Read, &l.UserID, &l.UploadDate); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// ToggleRead flips the read flag of a literature item.
func (r *LiteratureRepository) ToggleRead(ctx context.Context, urlID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE literature SET read = NOT read WHERE url_id = $1`,
		urlID,
	)
	if err != nil {
		r.logger.Error("Failed to toggle read flag", zap.Error(err), zap.String("url_id", urlID))
	}
	return err
}

func (r *LiteratureRepository) Delete(ctx context.Context, urlID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM literature WHERE url_id = $1`,
		urlID,
	)
	if err != nil {
		r.logger.Error("Failed to delete literature", zap.Error(err), zap.String("url_id", urlID))
	}
	return err
}
