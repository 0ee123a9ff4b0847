package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/reader/internal/service"
	"github.com/dom/reader/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestReadBookService_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	services, _, _, _ := testutil.NewTestServices(t, testDB, testutil.TestConfig())
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.ReadBookInput
		wantErr error
	}{
		{
			name: "finished book",
			input: service.ReadBookInput{
				Name:              "Dune",
				ExternalCatalogID: "B1hSG45JCX4C",
				StartDate:         date(2026, 1, 1),
				EndDate:           date(2026, 1, 20),
			},
		},
		{
			name: "currently reading",
			input: service.ReadBookInput{
				Name:              "Hyperion",
				ExternalCatalogID: "x8kNDwAAQBAJ",
				StartDate:         date(2026, 2, 1),
			},
		},
		{
			name:    "missing name",
			input:   service.ReadBookInput{ExternalCatalogID: "abc"},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "missing catalog id",
			input:   service.ReadBookInput{Name: "Untracked"},
			wantErr: service.ErrInvalidInput,
		},
		{
			name: "ends before it starts",
			input: service.ReadBookInput{
				Name:              "Backwards",
				ExternalCatalogID: "abc",
				StartDate:         date(2026, 3, 10),
				EndDate:           date(2026, 3, 1),
			},
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := services.ReadBook.Create(ctx, owner.ID, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, book)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, book.ID)
			assert.Equal(t, owner.ID, book.UserID)
			assert.Equal(t, owner.ID, book.CreatedBy)
			assert.Equal(t, owner.ID, book.UpdatedBy)
			assert.False(t, book.CreatedOn.IsZero())

			stored, err := services.ReadBook.Get(ctx, owner.ID, book.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.input.Name, stored.Name)
			assert.Equal(t, tt.input.ExternalCatalogID, stored.ExternalCatalogID)
		})
	}
}

func TestReadBookService_Ownership(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	services, _, _, _ := testutil.NewTestServices(t, testDB, testutil.TestConfig())
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewReadBookBuilder().WithOwner(owner).WithName("Private").Build(t, testDB.DB)

	_, err := services.ReadBook.Get(ctx, stranger.ID, book.ID)
	assert.ErrorIs(t, err, service.ErrReadBookNotFound)

	_, err = services.ReadBook.Update(ctx, stranger.ID, service.ReadBookInput{
		ID:                book.ID,
		Name:              "Stolen",
		ExternalCatalogID: "abc",
	})
	assert.ErrorIs(t, err, service.ErrReadBookNotFound)

	assert.ErrorIs(t, services.ReadBook.Delete(ctx, stranger.ID, book.ID), service.ErrReadBookNotFound)

	list, err := services.ReadBook.List(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := services.ReadBook.Get(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", stored.Name)
}

func TestReadBookService_UpdateAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	services, _, _, _ := testutil.NewTestServices(t, testDB, testutil.TestConfig())
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewReadBookBuilder().WithOwner(owner).WithPeriod(*date(2026, 4, 1), nil).Build(t, testDB.DB)

	updated, err := services.ReadBook.Update(ctx, owner.ID, service.ReadBookInput{
		ID:                book.ID,
		Name:              "The Hobbit, Annotated",
		ExternalCatalogID: book.ExternalCatalogID,
		StartDate:         book.StartDate,
		EndDate:           date(2026, 4, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit, Annotated", updated.Name)
	assert.Equal(t, book.CreatedOn.Unix(), updated.CreatedOn.Unix(), "creation stamp is kept")
	require.NotNil(t, updated.EndDate)

	_, err = services.ReadBook.Update(ctx, owner.ID, service.ReadBookInput{
		ID:                book.ID,
		Name:              "",
		ExternalCatalogID: book.ExternalCatalogID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, services.ReadBook.Delete(ctx, owner.ID, book.ID))
	assert.ErrorIs(t, services.ReadBook.Delete(ctx, owner.ID, book.ID), service.ErrReadBookNotFound)

	_, err = services.ReadBook.Get(ctx, owner.ID, book.ID)
	assert.ErrorIs(t, err, service.ErrReadBookNotFound)
}
