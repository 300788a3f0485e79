package pg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/tenant"
)

func newMock(t *testing.T) (*pg.Binder[*pg.SQLConn], sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return pg.NewSQLBinder(db), mock
}

func TestSQLBinder_IssuesBindAndReset(t *testing.T) {
	t.Parallel()

	binder, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec(pg.BindTenantSQL).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status = 'SHIPPED'").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(pg.ResetTenantSQL).WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, _ := tenant.NewScope(context.Background())
	require.NoError(t, tenant.Bind(ctx, id))

	bc, err := binder.Acquire(ctx)
	require.NoError(t, err)
	tag, err := bc.Conn().Exec(ctx, "UPDATE orders SET status = 'SHIPPED'")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tag.RowsAffected())
	require.NoError(t, bc.Release(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBinder_UnboundIssuesNothing(t *testing.T) {
	t.Parallel()

	binder, mock := newMock(t)
	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	bc, err := binder.Acquire(ctx)
	require.NoError(t, err)
	_, err = bc.Conn().Exec(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, bc.Release(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBinder_BindFailureAbortsAcquire(t *testing.T) {
	t.Parallel()

	binder, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec(pg.BindTenantSQL).WithArgs(id.String()).WillReturnError(errors.New(`invalid input syntax for type uuid`))
	mock.ExpectClose()

	ctx, _ := tenant.NewScope(context.Background())
	require.NoError(t, tenant.Bind(ctx, id))

	bc, err := binder.Acquire(ctx)
	assert.Nil(t, bc)
	assert.ErrorIs(t, err, pg.ErrTenantBind)
	assert.NoError(t, mock.ExpectationsWereMet(), "the connection is closed, not pooled")
}

func TestSQLBinder_ResetFailureClosesConnection(t *testing.T) {
	t.Parallel()

	binder, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec(pg.BindTenantSQL).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg.ResetTenantSQL).WillReturnError(errors.New("terminating connection"))
	mock.ExpectClose()

	ctx, _ := tenant.NewScope(context.Background())
	require.NoError(t, tenant.Bind(ctx, id))

	bc, err := binder.Acquire(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, bc.Release(ctx), pg.ErrTenantReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}
