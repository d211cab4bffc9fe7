package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/observability"
	"github.com/yukikurage/taskboard-api/internal/repository"
)

// txPhase is the step a mutation transaction is in. Abort is reachable from
// every phase; commit is only attempted once the cascade has been applied.
type txPhase string

const (
	phaseBegin    txPhase = "begin"
	phaseValidate txPhase = "validate"
	phasePrimary  txPhase = "primary_write"
	phaseCascade  txPhase = "cascade"
	phaseCommit   txPhase = "commit"
)

// txScope is handed to a mutation body. It carries the open transaction and
// records the phase the body has reached.
type txScope struct {
	tx    repository.Tx
	phase txPhase
}

func (s *txScope) enter(phase txPhase) {
	s.phase = phase
}

// Coordinator runs each mutation as one transaction: validate against the
// transaction's snapshot, apply the primary write, apply the cascade plan,
// commit. Any failure rolls everything back and is reported as a single
// ValidationError, NotFoundError or StoreError.
type Coordinator struct {
	store       repository.Store
	logger      zerolog.Logger
	maxAttempts int
}

// NewCoordinator creates a Coordinator. maxAttempts bounds how many times a
// mutation is run when the store aborts it with a retryable conflict.
func NewCoordinator(store repository.Store, logger zerolog.Logger, maxAttempts int) *Coordinator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Coordinator{
		store:       store,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// run executes body inside a transaction, retrying retryable store aborts.
// body must rebuild its working state on every call.
func (c *Coordinator) run(ctx context.Context, op string, body func(scope *txScope) error) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.runOnce(ctx, op, body)

		var storeErr *apierrors.StoreError
		if err == nil || !errors.As(err, &storeErr) || !storeErr.Retryable {
			return err
		}
		if attempt < c.maxAttempts {
			observability.RecordTransactionRetry(op)
			c.logger.Debug().Str("op", op).Int("attempt", attempt).Err(err).Msg("retrying transaction after conflict")
		}
	}
	return err
}

func (c *Coordinator) runOnce(ctx context.Context, op string, body func(scope *txScope) error) (err error) {
	scope := &txScope{phase: phaseBegin}

	tx, beginErr := c.store.Begin(ctx)
	if beginErr != nil {
		err = apierrors.NewStoreError("begin transaction", beginErr, repository.IsRetryable(beginErr))
		c.finish(op, scope.phase, err)
		return err
	}
	scope.tx = tx

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				c.logger.Error().Str("op", op).Err(rbErr).Msg("rollback failed")
			}
		}
		c.finish(op, scope.phase, err)
	}()

	if bodyErr := body(scope); bodyErr != nil {
		err = classifyError(scope.phase, bodyErr)
		return err
	}

	scope.enter(phaseCommit)
	if commitErr := tx.Commit(); commitErr != nil {
		err = apierrors.NewStoreError("commit transaction", commitErr, repository.IsRetryable(commitErr))
		return err
	}
	committed = true
	return nil
}

func (c *Coordinator) finish(op string, phase txPhase, err error) {
	if err == nil {
		observability.RecordTransaction(op, "commit", string(phaseCommit))
		return
	}

	observability.RecordTransaction(op, "abort", string(phase))
	event := c.logger.Warn()
	if apierrors.IsStore(err) {
		event = c.logger.Error()
	}
	event.Str("op", op).Str("phase", string(phase)).Err(err).Msg("transaction aborted")
}

// classifyError maps a failure inside the transaction body onto the error
// taxonomy. Typed errors pass through unwrapped; anything else is a store
// failure.
func classifyError(phase txPhase, err error) error {
	var (
		validationErr *apierrors.ValidationError
		notFoundErr   *apierrors.NotFoundError
		storeErr      *apierrors.StoreError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr
	case errors.As(err, &notFoundErr):
		return notFoundErr
	case errors.As(err, &storeErr):
		return storeErr
	default:
		return apierrors.NewStoreError(string(phase), err, repository.IsRetryable(err))
	}
}
