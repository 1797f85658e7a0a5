package repositories_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return database.NewDatabaseInstance(db, getTestLogger(), database.WithAcquireTimeout(time.Second)), mock
}

var toolRowColumns = []string{
	"id", "name", "description", "vendor", "website_url", "category_id", "monthly_cost",
	"active_users_count", "owner_department", "status", "created_at", "updated_at", "category",
}

// assertKind asserts that err is a classified error of the given kind and title
func assertKind(t *testing.T, err error, kind apperrors.Kind, title string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected classified error, got: %v", err)
	assert.Equal(t, kind, appErr.Kind)
	if title != "" {
		assert.Equal(t, title, appErr.Title)
	}
}
