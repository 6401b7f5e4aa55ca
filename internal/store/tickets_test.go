package store

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTicket(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO support_tickets").
		WithArgs(int64(100), int64(900)).
		WillReturnRows(pgxmock.NewRows([]string{"ticket_id"}).AddRow(int64(7)))

	id, err := st.CreateTicket(context.Background(), 100, 900)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestHasOpenTicket(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(100)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := st.HasOpenTicket(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestCloseTicket(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE support_tickets").
		WithArgs(int64(900), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := st.CloseTicket(context.Background(), 900, 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCounts(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"open", "total"}).AddRow(3, 10))

	open, total, err := st.TicketCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, open)
	assert.Equal(t, 10, total)
}
