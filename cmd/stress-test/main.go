/*
 * stress-test generates a random knowledge graph, times its layout and
 * optionally stores it in the configured snapshot source (DB_BACKEND) so the
 * viewer can be load tested with it
 */
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/db/postgres"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/layout"
)

var entityTypes = []string{"person", "organization", "location", "event", "concept", "technology", "product", "document", "ENTITY"}

type options struct {
	Nodes     int
	Degree    float64
	Seed      int64
	BarnesHut bool
	MaxTicks  int
	Store     string
}

// generate returns a connected graph: a random spanning tree plus extra
// random edges up to the requested mean degree.
func generate(nodes int, degree float64, seed int64) *model.Snapshot {
	r := rand.New(rand.NewSource(seed))
	s := &model.Snapshot{Nodes: make([]model.Node, 0, nodes), Edges: []model.Edge{}}
	for i := 0; i < nodes; i++ {
		s.Nodes = append(s.Nodes, model.Node{
			ID:   model.NodeID(strconv.Itoa(i)),
			Name: fmt.Sprintf("entity %d", i),
			Type: entityTypes[r.Intn(len(entityTypes))],
		})
	}
	edge := func(a, b int) model.Edge {
		return model.Edge{Source: s.Nodes[a].ID, Target: s.Nodes[b].ID, Relation: "related", Weight: 2}
	}
	for i := 1; i < nodes; i++ {
		s.Edges = append(s.Edges, edge(r.Intn(i), i))
	}
	extra := int(degree*float64(nodes)/2) - len(s.Edges)
	for i := 0; i < extra && nodes > 1; i++ {
		a, b := r.Intn(nodes), r.Intn(nodes)
		if a != b {
			s.Edges = append(s.Edges, edge(a, b))
		}
	}
	return s
}

func store(ctx context.Context, conf db.Config, kbID string, s *model.Snapshot) error {
	switch conf.Backend {
	case db.BackendPostgres:
		pg, err := postgres.NewPostgresDB(conf)
		if err != nil {
			return err
		}
		defer pg.Close()
		return pg.Import(ctx, kbID, "stress test "+kbID, s)
	case db.BackendFile, "":
		data, err := model.Encode(s, model.FormatJSON)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(conf.FileDir, kbID+".json"), data, 0o644)
	}
	return errors.Errorf("unknown DB_BACKEND %q", conf.Backend)
}

func run(ctx context.Context, opts options, out io.Writer) error {
	s := generate(opts.Nodes, opts.Degree, opts.Seed)
	conf := layout.DefaultForceSimulationConfig
	conf.BarnesHut = opts.BarnesHut
	sim := layout.NewForceSimulation(conf)
	sim.SetGraph(s.Nodes, s.Edges)
	stats, converged := sim.ComputeLayout(ctx, opts.MaxTicks)
	q := sim.Measure()
	perTick := time.Duration(0)
	if stats.Ticks > 0 {
		perTick = stats.TotalTime / time.Duration(stats.Ticks)
	}
	fmt.Fprintf(out, "nodes=%d edges=%d barnes-hut=%t ticks=%d converged=%t time=%s per-tick=%s overlaps=%d\n",
		q.Nodes, q.Links, opts.BarnesHut, stats.Ticks, converged, stats.TotalTime, perTick, q.Overlaps)
	if opts.Store == "" {
		return nil
	}
	if err := store(ctx, db.GetEnvConfig(), opts.Store, s); err != nil {
		return errors.Wrapf(err, "store knowledge base %q", opts.Store)
	}
	fmt.Fprintf(out, "stored as knowledge base %q\n", opts.Store)
	return nil
}

func main() {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "stress-test",
		Short: "Time the layout of a generated knowledge graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", 1000, "number of nodes")
	cmd.Flags().Float64Var(&opts.Degree, "degree", 3, "mean node degree")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&opts.BarnesHut, "barnes-hut", true, "approximate repulsion with a quadtree")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", 2000, "tick limit")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store the graph under this knowledge base id")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
