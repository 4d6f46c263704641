//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

var testConfig = db.Config{PGHost: "localhost", PGPort: 5432, PGUser: "kgview", PGPassword: "example", PGDatabase: "kgview"}

func setupDB(t *testing.T) *PostgresDB {
	pg, err := NewPostgresDB(testConfig)
	require.NoError(t, err)
	pg.db.Exec(`DROP TABLE IF EXISTS relations CASCADE`)
	pg.db.Exec(`DROP TABLE IF EXISTS entities CASCADE`)
	pg.db.Exec(`DROP TABLE IF EXISTS knowledge_bases CASCADE`)
	require.NoError(t, pg.Close())
	pg, err = NewPostgresDB(testConfig)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })
	return pg
}

func TestPostgresDB_ImportAndGraph(t *testing.T) {
	pg := setupDB(t)
	assert := assert.New(t)
	ctx := context.Background()
	s := &model.Snapshot{
		Nodes: []model.Node{{ID: "1", Name: "A", Type: "person", Source: []string{"a.pdf"}}, {ID: "2", Name: "B"}},
		Edges: []model.Edge{{Source: "1", Target: "2", Relation: "knows", Weight: 2}},
	}
	require.NoError(t, pg.Import(ctx, "kb1", "first", s))
	got, err := pg.Graph(ctx, "kb1")
	require.NoError(t, err)
	assert.Equal(s, got)

	require.NoError(t, pg.Import(ctx, "kb1", "first", &model.Snapshot{Nodes: []model.Node{{ID: "3", Name: "C"}}}))
	got, err = pg.Graph(ctx, "kb1")
	require.NoError(t, err)
	assert.Equal([]model.Node{{ID: "3", Name: "C"}}, got.Nodes)
	assert.Empty(got.Edges)

	require.NoError(t, pg.Import(ctx, "kb0", "empty", &model.Snapshot{}))
	ids, err := pg.KnowledgeBases(ctx)
	assert.NoError(err)
	assert.Equal([]string{"kb0", "kb1"}, ids)
}

func TestPostgresDB_GraphNotFound(t *testing.T) {
	pg := setupDB(t)
	_, err := pg.Graph(context.Background(), "missing")
	assert.True(t, errors.Is(err, db.ErrGraphNotFound))
}
