package graph

// It serves as dependency injection for your app, add any dependencies you require here.
import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
)

type Resolver struct {
	Ctrl *controller.Controller
	// PointerEvents counts handled pointer events by type, may be nil.
	PointerEvents *prometheus.CounterVec
}
