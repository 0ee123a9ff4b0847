package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/reader/internal/repository"
	"github.com/dom/reader/internal/repository/postgres"
	"github.com/dom/reader/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBookRepository_GetByIDForUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReadBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewReadBookBuilder().WithOwner(owner).WithName("Dune").Build(t, testDB.DB)

	found, err := repo.GetByIDForUser(ctx, book.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Name)
	assert.Equal(t, owner.ID, found.CreatedBy)

	_, err = repo.GetByIDForUser(ctx, book.ID, other.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "books are invisible to other users")

	_, err = repo.GetByIDForUser(ctx, book.ID+1000, owner.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReadBookRepository_ListByUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReadBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	undated := testutil.NewReadBookBuilder().WithOwner(owner).WithName("Undated").Build(t, testDB.DB)
	older := testutil.NewReadBookBuilder().WithOwner(owner).WithName("January").WithPeriod(jan, &feb).Build(t, testDB.DB)
	newer := testutil.NewReadBookBuilder().WithOwner(owner).WithName("February").WithPeriod(feb, nil).Build(t, testDB.DB)
	testutil.NewReadBookBuilder().WithOwner(other).WithName("Not mine").Build(t, testDB.DB)

	books, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, newer.ID, books[0].ID)
	assert.Equal(t, older.ID, books[1].ID)
	assert.Equal(t, undated.ID, books[2].ID)

	none, err := repo.ListByUser(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadBookRepository_InsertAssignsID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReadBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	first := testutil.NewReadBookBuilder().WithOwner(owner).Build(t, testDB.DB)

	second := *first
	second.ID = 0
	created, err := repo.InsertOne(ctx, &second)
	require.NoError(t, err)
	assert.Greater(t, created.ID, first.ID)
}
