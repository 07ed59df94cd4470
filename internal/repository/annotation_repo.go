package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"retrack/internal/model"
)

type AnnotationRepository struct {
	db     Querier
	logger *zap.Logger
}

func NewAnnotationRepository(db Querier, logger *zap.Logger) *AnnotationRepository {
	return &AnnotationRepository{db: db, logger: logger}
}

// DeleteForDocumentUserTx removes every highlight and page drawing a user
// has on a document, inside the caller's transaction.
func (r *AnnotationRepository) DeleteForDocumentUserTx(ctx context.Context, tx pgx.Tx, urlID string, userID int) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM highlights WHERE url_id = $1 AND user_id = $2`,
		urlID, userID,
	); err != nil {
		r.logger.Error("Failed to delete highlights", zap.Error(err), zap.String("url_id", urlID))
		return err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM page_drawings WHERE url_id = $1 AND user_id = $2`,
		urlID, userID,
	); err != nil {
		r.logger.Error("Failed to delete page drawings", zap.Error(err), zap.String("url_id", urlID))
		return err
	}
	return nil
}

// InsertHighlightsTx bulk-inserts highlights for a (document, user) pair
// with a single multi-row statement. Values are always bound as parameters.
func (r *AnnotationRepository) InsertHighlightsTx(ctx context.Context, tx pgx.Tx, urlID string, userID int, highlights []model.Highlight) error {
	if len(highlights) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO highlights (url_id, highlight_id, page, color, coordinates, user_id) VALUES `)
	args := make([]any, 0, len(highlights)*6)
	for i, h := range highlights {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, urlID, h.ID, h.Page, h.Color, h.Coordinates, userID)
	}

	if _, err := tx.Exec(ctx, sb.String(), args...); err != nil {
		r.logger.Error("Failed to insert highlights",
			zap.Error(err),
			zap.String("url_id", urlID),
			zap.Int("count", len(highlights)),
		)
		return err
	}
	return nil
}

// InsertDrawingsTx bulk-inserts page drawings for a (document, user) pair.
func (r *AnnotationRepository) InsertDrawingsTx(ctx context.Context, tx pgx.Tx, urlID string, userID int, drawings map[int]json.RawMessage) error {
	if len(drawings) == 0 {
		return nil
	}

	pages := make([]int, 0, len(drawings))
	for page := range drawings {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var sb strings.Builder
	sb.WriteString(`INSERT INTO page_drawings (url_id, page_number, drawing_data, user_id) VALUES `)
	args := make([]any, 0, len(pages)*4)
	for i, page := range pages {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4)
		args = append(args, urlID, page, drawings[page], userID)
	}

	if _, err := tx.Exec(ctx, sb.String(), args...); err != nil {
		r.logger.Error("Failed to insert page drawings",
			zap.Error(err),
			zap.String("url_id", urlID),
			zap.Int("count", len(pages)),
		)
		return err
	}
	return nil
}

// FindHighlights returns one user's highlights on a document.
func (r *AnnotationRepository) FindHighlights(ctx context.Context, urlID string, userID int) ([]model.Highlight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT highlight_id, page, color, coordinates FROM highlights WHERE url_id = $1 AND user_id = $2`,
		urlID, userID,
	)
	if err != nil {
		r.logger.Error("Failed to query highlights", zap.Error(err), zap.String("url_id", urlID))
		return nil, err
	}
	defer rows.Close()

	highlights := []model.Highlight{}
	for rows.Next() {
		var h model.Highlight
		if err := rows.Scan(&h.ID, &h.Page, &h.Color, &h.Coordinates); err != nil {
			return nil, err
		}
		highlights = append(highlights, h)
	}
	return highlights, rows.Err()
}

// FindDrawings returns one user's page drawings on a document keyed by page
// number.
func (r *AnnotationRepository) FindDrawings(ctx context.Context, urlID string, userID int) (map[int]json.RawMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT page_number, drawing_data FROM page_drawings WHERE url_id = $1 AND user_id = $2`,
		urlID, userID,
	)
	if err != nil {
		r.logger.Error("Failed to query page drawings", zap.Error(err), zap.String("url_id", urlID))
		return nil, err
	}
	defer rows.Close()

	drawings := map[int]json.RawMessage{}
	for rows.Next() {
		var page int
		var data json.RawMessage
		if err := rows.Scan(&page, &data); err != nil {
			return nil, err
		}
		drawings[page] = data
	}
	return drawings, rows.Err()
}
