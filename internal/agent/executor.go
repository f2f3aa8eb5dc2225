package agent

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/evangelosroutis/hypothesis-generation/internal/pkg/errors"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// GraphQuerier is the store surface the executor submits queries to.
// Satisfied by the neo4jdb client.
type GraphQuerier interface {
	Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// QueryCorrector regenerates a failing query from the store's error
// message. Satisfied by QuerySynthesizer.
type QueryCorrector interface {
	Correct(ctx context.Context, category Category, failedQuery, storeError string) (string, error)
}

// QueryExecutionError is a store-side failure of one query attempt.
type QueryExecutionError struct {
	Query   string
	Message string
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %s", e.Message)
}

type executorState string

const (
	stateReady     executorState = "ready"
	stateExecuting executorState = "executing"
	stateRetrying  executorState = "retrying"
	stateSucceeded executorState = "succeeded"
	stateFailed    executorState = "failed"
)

// Executor submits a query to the graph store and, on execution failure,
// asks the corrector for a repaired query up to a fixed retry budget.
// Attempts are independent; an empty result set is a success.
type Executor struct {
	store       GraphQuerier
	corrector   QueryCorrector
	budget      int
	timeout     time.Duration
	recoverable func(error) bool
	log         *logger.Logger
}

func NewExecutor(store GraphQuerier, corrector QueryCorrector, budget int, timeout time.Duration, log *logger.Logger) *Executor {
	if budget < 0 {
		budget = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		store:     store,
		corrector: corrector,
		budget:    budget,
		timeout:   timeout,
		log:       log.With("service", "QueryExecutor"),
	}
}

// SetRecoverable narrows which store errors trigger a correction retry.
// Without it every error is treated as recoverable. Regenerating a query
// cannot fix a transport or server failure, so production wiring passes
// neo4jdb.IsClientError here.
func (e *Executor) SetRecoverable(fn func(error) bool) {
	e.recoverable = fn
}

// Run executes the query, repairing and resubmitting on store errors until
// the retry budget is spent. A store call that exceeds its deadline counts
// as an execution error and consumes one budget unit.
func (e *Executor) Run(ctx context.Context, category Category, query string) ([]map[string]any, error) {
	state := stateReady
	var lastErr *QueryExecutionError

	for attempt := 0; attempt <= e.budget; attempt++ {
		state = stateExecuting
		qctx, cancel := context.WithTimeout(ctx, e.timeout)
		rows, err := e.store.Query(qctx, query, nil)
		cancel()
		if err == nil {
			state = stateSucceeded
			e.log.Debug("query finished", "state", string(state), "attempt", attempt, "rows", len(rows))
			return rows, nil
		}

		lastErr = &QueryExecutionError{Query: query, Message: err.Error()}
		if e.recoverable != nil && !e.recoverable(err) {
			state = stateFailed
			e.log.Error("query failed unrecoverably", "state", string(state), "attempt", attempt, "error", err.Error())
			return nil, fmt.Errorf("unrecoverable query error: %w", lastErr)
		}
		if attempt == e.budget {
			break
		}

		state = stateRetrying
		e.log.Warn("query failed; regenerating", "state", string(state), "attempt", attempt, "error", err.Error())
		corrected, cerr := e.corrector.Correct(ctx, category, query, err.Error())
		if cerr != nil {
			return nil, fmt.Errorf("query correction failed: %w", cerr)
		}
		query = corrected
	}

	state = stateFailed
	e.log.Error("query abandoned", "state", string(state), "attempts", e.budget+1, "error", lastErr.Message)
	return nil, fmt.Errorf("%w after %d attempts: %w", pkgerrors.ErrRetryBudgetExhausted, e.budget+1, lastErr)
}
