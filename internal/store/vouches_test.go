package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scubahq/tradevault/internal/domain"
)

func samplePendingVouch() *domain.PendingVouch {
	return &domain.PendingVouch{
		TradeID: "trade-1",
		Role:    domain.RoleBuyer,
		RaterID: 100,
		RatedID: 200,
		Rating:  5,
		Comment: "smooth trade",
	}
}

func TestSubmitPendingVouchFirstSubmission(t *testing.T) {
	st, mock := newMockStore(t)
	v := samplePendingVouch()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM pending_vouches").
		WithArgs(v.TradeID, v.Role).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO pending_vouches").
		WithArgs(v.TradeID, v.Role, v.RaterID, v.RatedID, v.Rating, v.Comment).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO user_stats").
		WithArgs(v.RatedID, v.Rating).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := st.SubmitPendingVouch(context.Background(), v)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPendingVouchResubmissionAdjustsDelta(t *testing.T) {
	st, mock := newMockStore(t)
	v := samplePendingVouch()
	v.Rating = 5

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM pending_vouches").
		WithArgs(v.TradeID, v.Role).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(3))
	mock.ExpectExec("INSERT INTO pending_vouches").
		WithArgs(v.TradeID, v.Role, v.RaterID, v.RatedID, v.Rating, v.Comment).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// Sum moves by the delta only; the count stays as it was.
	mock.ExpectExec("UPDATE user_stats").
		WithArgs(v.RatedID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := st.SubmitPendingVouch(context.Background(), v)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteVouchPairIncomplete(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT trade_id, role").
		WithArgs("trade-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"trade_id", "role", "rater_id", "rated_user_id", "rating", "comment", "created_at",
		}).AddRow("trade-1", domain.RoleBuyer, int64(100), int64(200), 5, "ok", now))
	mock.ExpectRollback()

	vouches, err := st.CompleteVouchPair(context.Background(), "trade-1")
	require.NoError(t, err)
	assert.Nil(t, vouches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteVouchPairPublishes(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT trade_id, role").
		WithArgs("trade-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"trade_id", "role", "rater_id", "rated_user_id", "rating", "comment", "created_at",
		}).
			AddRow("trade-1", domain.RoleBuyer, int64(100), int64(200), 5, "smooth", now).
			AddRow("trade-1", domain.RoleSeller, int64(200), int64(100), 4, "fast", now))
	mock.ExpectQuery("INSERT INTO vouches").
		WithArgs("trade-1", int64(100), int64(200), 5, "smooth", domain.RoleBuyer).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO vouches").
		WithArgs("trade-1", int64(200), int64(100), 4, "fast", domain.RoleSeller).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("DELETE FROM pending_vouches").
		WithArgs("trade-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	vouches, err := st.CompleteVouchPair(context.Background(), "trade-1")
	require.NoError(t, err)
	require.Len(t, vouches, 2)
	assert.Equal(t, int64(1), vouches[0].ID)
	assert.Equal(t, domain.RoleSeller, vouches[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPublishedVouches(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("trade-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("trade-2").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	done, err := st.HasPublishedVouches(context.Background(), "trade-1")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = st.HasPublishedVouches(context.Background(), "trade-2")
	require.NoError(t, err)
	assert.False(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVouchesByTradeBacksOutRatings(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rated_user_id, rating FROM vouches").
		WithArgs("trade-1").
		WillReturnRows(pgxmock.NewRows([]string{"rated_user_id", "rating"}).
			AddRow(int64(200), 5).
			AddRow(int64(100), 4))
	mock.ExpectExec("UPDATE user_stats").
		WithArgs(int64(200), 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE user_stats").
		WithArgs(int64(100), 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM vouches").
		WithArgs("trade-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	n, err := st.DeleteVouchesByTrade(context.Background(), "trade-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVouchesByTradeNoMatches(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rated_user_id, rating FROM vouches").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"rated_user_id", "rating"}))
	mock.ExpectRollback()

	n, err := st.DeleteVouchesByTrade(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearUserVouches(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_stats").
		WithArgs(int64(200)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM vouches").
		WithArgs(int64(200)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM pending_vouches").
		WithArgs(int64(200)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := st.ClearUserVouches(context.Background(), 200)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetUserKeepsTradeHistory(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_stats").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM active_listings").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM temp_sales").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM vouches").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec("DELETE FROM pending_vouches").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	err := st.ResetUser(context.Background(), 1)
	assert.NoError(t, err)
	// No DELETE FROM trade_history was expected or issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}
