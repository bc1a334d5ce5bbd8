package pipeline

import (
	"context"
	"fmt"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/logging"
)

// Resolver orchestrates the three-stage pipeline for one question. It never
// returns an error past its own boundary: every collaborator failure
// degrades into a Failure-carrying Answer.
type Resolver struct {
	generator   *Generator
	executor    *Executor
	synthesizer *Synthesizer
	log         *logging.Logger
}

// NewResolver wires the pipeline stages together
func NewResolver(generator *Generator, executor *Executor, synthesizer *Synthesizer, log *logging.Logger) *Resolver {
	return &Resolver{
		generator:   generator,
		executor:    executor,
		synthesizer: synthesizer,
		log:         log,
	}
}

// Resolve answers one question against a catalog snapshot. The fast path is
// checked first; on a miss (or zero rows) control falls through to
// generate -> execute -> synthesize. An execution failure is not
// regenerated; it flows to the synthesizer once so the user gets an
// explanatory answer instead of a silent retry loop.
func (r *Resolver) Resolve(ctx context.Context, question string, cat *catalog.Catalog) (answer Answer) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("pipeline panic: %v", rec)

			answer = Answer{
				Text: fmt.Sprintf("Error processing your question: %v", rec),
				Outcome: ExecutionOutcome{Failure: &Failure{
					Kind:   FailureOther,
					Detail: fmt.Sprintf("panic: %v", rec),
				}},
			}
		}
	}()

	if fast, ok := r.tryFastPath(ctx, question, cat); ok {
		return fast
	}

	stmt, err := r.generator.Generate(ctx, question, cat)
	if err != nil {
		r.log.WithError(err).Error("SQL generation failed")

		return Answer{
			Text: fmt.Sprintf("Error processing your question: %v", err),
			Outcome: ExecutionOutcome{Failure: &Failure{
				Kind:   FailureOther,
				Detail: err.Error(),
			}},
		}
	}

	outcome := r.executor.Execute(ctx, stmt)

	text, err := r.synthesizer.Synthesize(ctx, question, stmt, outcome)
	if err != nil {
		r.log.WithError(err).Error("answer synthesis failed")

		return Answer{
			Text:          fmt.Sprintf("Error processing your question: %v", err),
			StatementUsed: stmt.SQL,
			Outcome:       outcome,
		}
	}

	return Answer{Text: text, StatementUsed: stmt.SQL, Outcome: outcome}
}
