package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, repo *SQLRepository, title, author, isbn string, published *int) *Book {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	b := &Book{Title: title, Author: author, ISBN: isbn, PublishedYear: published, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Insert(context.Background(), b))
	return b
}

func titles(books []Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestSQLRepositoryInsertAndFind(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))
	ctx := context.Background()

	b := insert(t, repo, "Dune", "Frank Herbert", "978-0441013593", year(1965))
	assert.NotZero(t, b.ID)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, 1965, *got.PublishedYear)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

	got, err = repo.FindByISBN(ctx, "978-0441013593")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = repo.FindByISBN(ctx, "978-0441013")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(ctx, b.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRepositoryRejectsDuplicateISBN(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))

	first := insert(t, repo, "Dune", "Frank Herbert", "isbn-1", nil)
	dup := &Book{Title: "Dune Messiah", Author: "Frank Herbert", ISBN: "isbn-1"}
	assert.Error(t, repo.Insert(context.Background(), dup))

	other := insert(t, repo, "Children of Dune", "Frank Herbert", "isbn-2", nil)
	other.ISBN = first.ISBN
	assert.Error(t, repo.Update(context.Background(), other))
}

func TestSQLRepositorySearchByTitleIsCaseInsensitiveSubstring(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))

	insert(t, repo, "War and Peace", "Leo Tolstoy", "isbn-1", nil)
	insert(t, repo, "the war of worlds", "H. G. Wells", "isbn-2", nil)
	insert(t, repo, "Peace Talks", "Jim Butcher", "isbn-3", nil)
	insert(t, repo, "100% Wrong", "Anon", "isbn-4", nil)

	got, err := repo.SearchByTitle(context.Background(), "War")
	require.NoError(t, err)
	assert.Equal(t, []string{"War and Peace", "the war of worlds"}, titles(got))

	got, err = repo.SearchByTitle(context.Background(), "0%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Wrong"}, titles(got))

	got, err = repo.SearchByTitle(context.Background(), "_")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLRepositoryFindByAuthorIsExact(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))

	insert(t, repo, "Emma", "Jane Austen", "isbn-1", nil)
	insert(t, repo, "Persuasion", "Jane Austen", "isbn-2", nil)
	insert(t, repo, "Sanditon", "jane austen", "isbn-3", nil)

	got, err := repo.FindByAuthor(context.Background(), "Jane Austen")
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma", "Persuasion"}, titles(got))

	got, err = repo.FindByAuthor(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLRepositoryFindPublishedAfter(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))

	insert(t, repo, "Old", "A", "isbn-1", year(1900))
	insert(t, repo, "Edge", "A", "isbn-2", year(2000))
	insert(t, repo, "New", "A", "isbn-3", year(2020))
	insert(t, repo, "Unknown", "A", "isbn-4", nil)

	got, err := repo.FindPublishedAfter(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, titles(got))
}

func TestSQLRepositoryUpdateAndDeleteMissing(t *testing.T) {
	repo := NewSQLRepository(newSQLiteDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, repo.Update(ctx, &Book{ID: 404, Title: "x", Author: "y", ISBN: "z"}), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 404), ErrNotFound)

	b := insert(t, repo, "Dune", "Frank Herbert", "isbn-1", nil)
	require.NoError(t, repo.Delete(ctx, b.ID))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLRepositoryPostgresPlaceholders(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewSQLRepository(sqlx.NewDb(mockDB, "postgres"))
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)INSERT INTO books .+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)\s+RETURNING id`).
		WithArgs("Dune", "Frank Herbert", "isbn-1", nil, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	b := &Book{Title: "Dune", Author: "Frank Herbert", ISBN: "isbn-1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Insert(ctx, b))
	assert.Equal(t, int64(11), b.ID)

	mock.ExpectQuery(`WHERE LOWER\(title\) LIKE \$1 ESCAPE`).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "isbn", "published_year", "created_at", "updated_at"}).
			AddRow(int64(11), "50% Off", "A", "isbn-1", nil, now, now))

	got, err := repo.SearchByTitle(ctx, "50%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].PublishedYear)

	mock.ExpectQuery(`FROM books WHERE id = \$1`).
		WithArgs(int64(12)).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(ctx, 12)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(ctx, 11))
	require.NoError(t, mock.ExpectationsWereMet())
}
