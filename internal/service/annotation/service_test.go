package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/repository"
)

type statement struct {
	sql  string
	args []any
}

type fakeTx struct {
	stmts      []statement
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, errors.New("forced failure")
	}
	t.stmts = append(t.stmts, statement{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *fakeTx) Conn() *pgx.Conn { return nil }

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

// fakeQuerier serves canned rows for the read path, routed by table.
type fakeQuerier struct {
	highlightRows [][]any
	drawingRows   [][]any
	lastSQL       string
	lastArgs      []any
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	q.lastArgs = args
	if strings.Contains(sql, "page_drawings") {
		return &fakeRows{rows: q.drawingRows}, nil
	}
	return &fakeRows{rows: q.highlightRows}, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *json.RawMessage:
			*p = row[i].(json.RawMessage)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return nil, errors.New("not implemented") }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func newTestService(tx *fakeTx, q repository.Querier) *Service {
	log := zap.NewNop()
	return NewService(&fakeDB{tx: tx}, repository.NewAnnotationRepository(q, log), log)
}

func TestSaveDeletesBeforeInserting(t *testing.T) {
	tx := &fakeTx{}
	svc := newTestService(tx, nil)

	coords := json.RawMessage(`{"x":1,"y":2}`)
	err := svc.Save(context.Background(), "12_doc", 12,
		[]model.Highlight{
			{ID: "h1", Page: 1, Color: "yellow", Coordinates: coords},
			{ID: "h2", Page: 3, Color: "green", Coordinates: coords},
		},
		map[int]json.RawMessage{
			2: json.RawMessage(`{"strokes":[]}`),
			1: json.RawMessage(`{"strokes":[1]}`),
		},
	)
	require.NoError(t, err)
	require.Len(t, tx.stmts, 4)
	assert.True(t, tx.committed)

	assert.Contains(t, tx.stmts[0].sql, "DELETE FROM highlights")
	assert.Equal(t, []any{"12_doc", 12}, tx.stmts[0].args)
	assert.Contains(t, tx.stmts[1].sql, "DELETE FROM page_drawings")
	assert.Equal(t, []any{"12_doc", 12}, tx.stmts[1].args)

	// both highlights land in one multi-row parameterized statement
	insert := tx.stmts[2]
	assert.Contains(t, insert.sql, "INSERT INTO highlights")
	assert.Contains(t, insert.sql, "($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)")
	assert.Equal(t, []any{
		"12_doc", "h1", 1, "yellow", coords, 12,
		"12_doc", "h2", 3, "green", coords, 12,
	}, insert.args)

	drawings := tx.stmts[3]
	assert.Contains(t, drawings.sql, "INSERT INTO page_drawings")
	// pages are bound in sorted order
	assert.Equal(t, 1, drawings.args[1])
	assert.Equal(t, 2, drawings.args[5])
}

func TestSaveEmptySetsOnlyDeletes(t *testing.T) {
	tx := &fakeTx{}
	svc := newTestService(tx, nil)

	err := svc.Save(context.Background(), "7_doc", 7, nil, nil)
	require.NoError(t, err)
	require.Len(t, tx.stmts, 2)
	assert.True(t, tx.committed)
	for _, s := range tx.stmts {
		assert.Contains(t, s.sql, "DELETE FROM")
	}
}

func TestSaveRollsBackOnInsertFailure(t *testing.T) {
	tx := &fakeTx{failOn: "INSERT INTO highlights"}
	svc := newTestService(tx, nil)

	err := svc.Save(context.Background(), "7_doc", 7,
		[]model.Highlight{{ID: "h1", Page: 1, Coordinates: json.RawMessage(`{}`)}},
		nil,
	)
	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestSaveBeginFailure(t *testing.T) {
	log := zap.NewNop()
	svc := NewService(
		&fakeDB{beginErr: errors.New("pool exhausted")},
		repository.NewAnnotationRepository(nil, log),
		log,
	)
	err := svc.Save(context.Background(), "7_doc", 7, nil, nil)
	require.Error(t, err)
}

func TestLoadScansHighlightsAndDrawings(t *testing.T) {
	q := &fakeQuerier{
		highlightRows: [][]any{
			{"h1", 2, "yellow", json.RawMessage(`{"x":1}`)},
		},
		drawingRows: [][]any{
			{4, json.RawMessage(`{"strokes":[]}`)},
		},
	}
	svc := newTestService(nil, q)

	highlights, drawings, err := svc.Load(context.Background(), "3_doc", 3)
	require.NoError(t, err)
	require.Len(t, highlights, 1)
	assert.Equal(t, "h1", highlights[0].ID)
	assert.Equal(t, 2, highlights[0].Page)
	assert.Equal(t, "yellow", highlights[0].Color)

	require.Len(t, drawings, 1)
	assert.JSONEq(t, `{"strokes":[]}`, string(drawings[4]))

	// reads are always scoped to the requesting user
	assert.Equal(t, []any{"3_doc", 3}, q.lastArgs)
	assert.Contains(t, q.lastSQL, "user_id = $2")
}
