// Package file serves knowledge graphs from a directory holding one
// <kb>.json, <kb>.yaml or <kb>.yml snapshot per knowledge base.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

// in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

type FileDB struct {
	dir string
}

func NewFileDB(conf db.Config) (*FileDB, error) {
	info, err := os.Stat(conf.FileDir)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot directory")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("snapshot directory %q is not a directory", conf.FileDir)
	}
	return &FileDB{dir: conf.FileDir}, nil
}

func validKnowledgeBaseID(kbID string) bool {
	return kbID != "" && kbID != "." && kbID != ".." && !strings.ContainsAny(kbID, `/\`)
}

func (f *FileDB) Graph(ctx context.Context, kbID string) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKnowledgeBaseID(kbID) {
		return nil, errors.Wrapf(db.ErrGraphNotFound, "invalid knowledge base id %q", kbID)
	}
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(f.dir, kbID+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read knowledge base %q", kbID)
		}
		s, err := model.Decode(data, model.FormatFromExtension(ext))
		if err != nil {
			return nil, errors.Wrapf(err, "knowledge base %q", kbID)
		}
		return s, nil
	}
	return nil, errors.Wrapf(db.ErrGraphNotFound, "knowledge base %q", kbID)
}

func (f *FileDB) KnowledgeBases(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list snapshot directory")
	}
	seen := map[string]bool{}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isSnapshotExtension(ext) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ext)
		if !validKnowledgeBaseID(id) || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isSnapshotExtension(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
