// Package annotation persists per-user highlight and drawing layers on
// shared documents with full-replace semantics: every save atomically swaps
// the stored set for the submitted one.
package annotation

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/repository"
	"retrack/pkg/metrics"
)

// DB is the transactional entry point; satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db          DB
	annotations *repository.AnnotationRepository
	logger      *zap.Logger
}

func NewService(db DB, annotations *repository.AnnotationRepository, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		annotations: annotations,
		logger:      logger,
	}
}

// Save replaces the user's annotations on a document. The delete and the
// bulk inserts run in one transaction, so a failure mid-way never leaves
// the annotation set empty.
func (s *Service) Save(ctx context.Context, urlID string, userID int, highlights []model.Highlight, drawings map[int]json.RawMessage) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(err))
		metrics.IncrementAnnotationSave("failed")
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.annotations.DeleteForDocumentUserTx(ctx, tx, urlID, userID); err != nil {
		metrics.IncrementAnnotationSave("failed")
		return err
	}
	if err := s.annotations.InsertHighlightsTx(ctx, tx, urlID, userID, highlights); err != nil {
		metrics.IncrementAnnotationSave("failed")
		return err
	}
	if err := s.annotations.InsertDrawingsTx(ctx, tx, urlID, userID, drawings); err != nil {
		metrics.IncrementAnnotationSave("failed")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("Failed to commit annotation save", zap.Error(err))
		metrics.IncrementAnnotationSave("failed")
		return err
	}

	s.logger.Info("Annotations saved",
		zap.String("url_id", urlID),
		zap.Int("user_id", userID),
		zap.Int("highlights", len(highlights)),
		zap.Int("drawings", len(drawings)),
	)
	metrics.IncrementAnnotationSave("success")
	return nil
}

// Load returns the user's own annotation layer on a document. Other users'
// annotations on the same document are never visible.
func (s *Service) Load(ctx context.Context, urlID string, userID int) ([]model.Highlight, map[int]json.RawMessage, error) {
	highlights, err := s.annotations.FindHighlights(ctx, urlID, userID)
	if err != nil {
		return nil, nil, err
	}
	drawings, err := s.annotations.FindDrawings(ctx, urlID, userID)
	if err != nil {
		return nil, nil, err
	}
	return highlights, drawings, nil
}
