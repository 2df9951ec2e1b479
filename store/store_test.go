package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore skips unless CHAINCHAT_TEST_DATABASE_URL points at a
// disposable PostgreSQL database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	connStr := os.Getenv("CHAINCHAT_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("CHAINCHAT_TEST_DATABASE_URL not set, skipping store tests")
	}

	s := NewStore(connStr)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// testOwner returns a unique owner per test so runs never collide.
func testOwner() string {
	return "0xowner-" + uuid.NewString()
}

func TestCreateAndListContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	require.NoError(t, s.CreateContact(ctx, owner, types.Contact{
		Name:    "alice",
		Address: "0x1111111111111111111111111111111111111111",
	}))
	require.NoError(t, s.CreateContact(ctx, owner, types.Contact{
		Name:    "bob",
		Address: "0x2222222222222222222222222222222222222222",
		Group:   "devs",
	}))

	contacts, err := s.Contacts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "alice", contacts[0].Name)
	assert.Equal(t, "devs", contacts[1].Group)

	// Another owner sees an empty book.
	other, err := s.Contacts(ctx, testOwner())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreateContactDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	contact := types.Contact{Name: "alice", Address: "0x1111111111111111111111111111111111111111"}
	require.NoError(t, s.CreateContact(ctx, owner, contact))

	err := s.CreateContact(ctx, owner, contact)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContactExists))

	// The same name under a different owner is fine.
	require.NoError(t, s.CreateContact(ctx, testOwner(), contact))
}

func TestCreateTeamAndMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	require.NoError(t, s.CreateTeam(ctx, owner, types.Team{Name: "devs", Description: "engineering"}))

	err := s.CreateTeam(ctx, owner, types.Team{Name: "devs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTeamExists))

	require.NoError(t, s.CreateContact(ctx, owner, types.Contact{
		Name:    "bob",
		Address: "0x2222222222222222222222222222222222222222",
		Group:   "devs",
	}))

	members, err := s.TeamMembers(ctx, owner, "devs")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Name)
}

func TestCreateTeamAssignsMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	require.NoError(t, s.CreateContact(ctx, owner, types.Contact{
		Name:    "carol",
		Address: "0x3333333333333333333333333333333333333333",
	}))
	require.NoError(t, s.CreateContact(ctx, owner, types.Contact{
		Name:    "dave",
		Address: "0x4444444444444444444444444444444444444444",
	}))

	require.NoError(t, s.CreateTeam(ctx, owner, types.Team{
		Name:    "payroll",
		Members: []string{"carol"},
	}))

	members, err := s.TeamMembers(ctx, owner, "payroll")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "carol", members[0].Name)
	assert.Equal(t, "payroll", members[0].Group)
}

func TestRecordTransactionIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	record := &types.TransactionRecord{
		Hash:   "0xhash-" + uuid.NewString(),
		From:   owner,
		To:     "0x1111111111111111111111111111111111111111",
		Amount: "50",
		Token:  "STT",
		Status: types.TxPending,
	}

	require.NoError(t, s.RecordTransaction(ctx, owner, record))
	// A second record of the same hash is a no-op, not an error.
	require.NoError(t, s.RecordTransaction(ctx, owner, record))

	records, err := s.Transactions(ctx, owner, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.TxPending, records[0].Status)
}

func TestUpdateTransactionStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	record := &types.TransactionRecord{
		Hash:   "0xhash-" + uuid.NewString(),
		From:   owner,
		To:     "0x1111111111111111111111111111111111111111",
		Amount: "50",
		Token:  "STT",
		Status: types.TxPending,
	}
	require.NoError(t, s.RecordTransaction(ctx, owner, record))

	require.NoError(t, s.UpdateTransactionStatus(ctx, record.Hash, types.TxConfirmed, 3))

	records, err := s.Transactions(ctx, owner, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.TxConfirmed, records[0].Status)
	assert.Equal(t, uint64(3), records[0].Confirmations)

	err = s.UpdateTransactionStatus(ctx, "0xmissing", types.TxConfirmed, 1)
	require.Error(t, err)
}

func TestTransactionsSinceFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := testOwner()

	old := &types.TransactionRecord{
		Hash:      "0xhash-" + uuid.NewString(),
		From:      owner,
		To:        "0x1111111111111111111111111111111111111111",
		Amount:    "1",
		Token:     "STT",
		Status:    types.TxConfirmed,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &types.TransactionRecord{
		Hash:   "0xhash-" + uuid.NewString(),
		From:   owner,
		To:     "0x1111111111111111111111111111111111111111",
		Amount: "2",
		Token:  "STT",
		Status: types.TxPending,
	}
	require.NoError(t, s.RecordTransaction(ctx, owner, old))
	require.NoError(t, s.RecordTransaction(ctx, owner, recent))

	records, err := s.Transactions(ctx, owner, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, recent.Hash, records[0].Hash)
}

func TestLogActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.LogActivity(ctx, types.ActivityEntry{
		SessionID: uuid.NewString(),
		Action:    types.ActionTransfer,
		Message:   "send 50 STT to alice",
		Intent:    `{"action":"transfer"}`,
		Result:    "proposed",
	})
	require.NoError(t, err)
}
