// kg-viewer serves interactive knowledge graph views over HTTP, configured
// through the environment (see app.Config and db.Config).
package main

import "github.com/suxatcode/knowledge-graph-view/internal/app"

func main() {
	app.Run()
}
