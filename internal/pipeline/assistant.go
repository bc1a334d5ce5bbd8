package pipeline

import (
	"context"

	"github.com/datachat-labs/datachat/internal/catalog"
)

// DataAssistant exposes the resolver through the assistant capability
// surface the router dispatches to. Each query runs against the catalog
// snapshot current at call time.
type DataAssistant struct {
	resolver *Resolver
	provider *catalog.Provider
}

// NewDataAssistant creates the tabular-data QA assistant
func NewDataAssistant(resolver *Resolver, provider *catalog.Provider) *DataAssistant {
	return &DataAssistant{resolver: resolver, provider: provider}
}

// Initialized reports whether any datasets are loaded
func (a *DataAssistant) Initialized() bool {
	return a != nil && len(a.provider.Snapshot().Tables) > 0
}

// Query resolves the question and returns the answer text
func (a *DataAssistant) Query(ctx context.Context, text string) (string, error) {
	answer := a.resolver.Resolve(ctx, text, a.provider.Snapshot())
	return answer.Text, nil
}

// Ask resolves the question and returns the full Answer, including the
// statement used, for surfaces that display the audit trail.
func (a *DataAssistant) Ask(ctx context.Context, text string) Answer {
	return a.resolver.Resolve(ctx, text, a.provider.Snapshot())
}
