// ABOUTME: Concurrent import of parsed recipes through an add function
// ABOUTME: Bounds in-flight requests and keeps results in input order

package recipefile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/recipe-scaler/internal/client"
)

// AddFunc adds one recipe and returns the server's confirmation
type AddFunc func(ctx context.Context, recipe client.Recipe) (string, error)

// Result is the outcome of adding one imported recipe
type Result struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Import adds every recipe with at most limit requests in flight. A failed
// recipe does not stop the others.
func Import(ctx context.Context, add AddFunc, recipes []client.Recipe, limit int) []Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(recipes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, r := range recipes {
		g.Go(func() error {
			msg, err := add(gctx, r)
			if err != nil {
				results[i] = Result{Name: r.Name, Message: client.Message(err)}
				return nil
			}
			results[i] = Result{Name: r.Name, OK: true, Message: msg}
			return nil
		})
	}
	g.Wait()
	return results
}

// Failed counts the results that did not succeed
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
