package db

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

// Source hands out graph snapshots, one per knowledge base.
//
//go:generate mockgen -destination db_mock.go -package db . Source
type Source interface {
	// Graph returns the current snapshot of knowledge base kbID, or an error
	// wrapping ErrGraphNotFound.
	Graph(ctx context.Context, kbID string) (*model.Snapshot, error)
	// KnowledgeBases lists the ids accepted by Graph in ascending order.
	KnowledgeBases(ctx context.Context) ([]string, error)
}

var ErrGraphNotFound = errors.New("knowledge graph not found")

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	// Backend is one of {file, postgres}.
	Backend string `env:"DB_BACKEND" envDefault:"file"`
	FileDir string `env:"DB_FILE_DIR" envDefault:"./data"`

	PGHost     string `env:"DB_PG_HOST" envDefault:"localhost"`
	PGPort     int    `env:"DB_PG_PORT" envDefault:"5432"`
	PGUser     string `env:"DB_PG_USER" envDefault:"kgview"`
	PGPassword string `env:"DB_PG_PASSWORD" envDefault:"example"`
	PGDatabase string `env:"DB_PG_DATABASE" envDefault:"kgview"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.PGHost, c.PGUser, c.PGPassword, c.PGDatabase, c.PGPort)
}

// String hides the password, for logging.
func (c Config) String() string {
	return fmt.Sprintf("{backend: %s, dir: %s, pg: %s@%s:%d/%s}",
		c.Backend, c.FileDir, c.PGUser, c.PGHost, c.PGPort, c.PGDatabase)
}
