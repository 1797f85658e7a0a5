package repositories

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	toolsTable      = "tools"
	categoriesTable = "categories"
)

// Repository provides common database operations
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new base repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// withConn runs fn on one borrowed connection. Errors that fn did not classify are reported
// under title.
func (r *Repository) withConn(ctx context.Context, operation, title string, fn func(ctx context.Context, q database.Querier) error) error {
	start := time.Now()
	err := r.db.WithConn(ctx, fn)
	metrics.ObserveQuery(operation, start, err)
	return r.fail(ctx, err, title, map[string]any{"operation": operation})
}

// withTx is withConn inside a transaction.
func (r *Repository) withTx(ctx context.Context, operation, title string, fn func(ctx context.Context, q database.Querier) error) error {
	start := time.Now()
	err := r.db.WithTx(ctx, fn)
	metrics.ObserveQuery(operation, start, err)
	return r.fail(ctx, err, title, map[string]any{"operation": operation})
}

// fail classifies a storage error. Already classified errors pass through unchanged.
func (r *Repository) fail(ctx context.Context, err error, title string, fields map[string]any) error {
	if err == nil {
		return nil
	}
	tracing.Fail(trace.SpanFromContext(ctx), err, title)
	if _, ok := apperrors.As(err); ok {
		return err
	}

	if database.IsConstraintViolation(err) {
		if fields == nil {
			fields = map[string]any{}
		}
		fields["constraint"] = database.ConstraintName(err)
	}
	r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error(title)

	if database.IsUnavailable(err) {
		return apperrors.StorageUnavailable(err)
	}
	return apperrors.QueryFailure(title, err)
}
