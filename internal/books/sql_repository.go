package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const bookColumns = `id, title, author, isbn, published_year, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLRepository stores books in a relational database through sqlx.
// Queries are written with '?' placeholders and rebound for the driver in use.
type SQLRepository struct {
	db *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]Book, error) {
	return r.list(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*Book, error) {
	return r.one(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
}

func (r *SQLRepository) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	return r.one(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)
}

func (r *SQLRepository) FindByAuthor(ctx context.Context, author string) ([]Book, error) {
	return r.list(ctx, `SELECT `+bookColumns+` FROM books WHERE author = ? ORDER BY id`, author)
}

func (r *SQLRepository) SearchByTitle(ctx context.Context, keyword string) ([]Book, error) {
	pattern := "%" + strings.ToLower(likeEscaper.Replace(keyword)) + "%"
	return r.list(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE LOWER(title) LIKE ? ESCAPE '\'
		ORDER BY id
	`, pattern)
}

func (r *SQLRepository) FindPublishedAfter(ctx context.Context, year int) ([]Book, error) {
	return r.list(ctx, `SELECT `+bookColumns+` FROM books WHERE published_year > ? ORDER BY id`, year)
}

func (r *SQLRepository) Insert(ctx context.Context, b *Book) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO books (title, author, isbn, published_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		b.Title,
		b.Author,
		b.ISBN,
		b.PublishedYear,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("books: insert: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, b *Book) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE books
		SET title = ?, author = ?, isbn = ?, published_year = ?, updated_at = ?
		WHERE id = ?
	`),
		b.Title,
		b.Author,
		b.ISBN,
		b.PublishedYear,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("books: update %d: %w", b.ID, err)
	}
	return expectOneRow(res, b.ID)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("books: delete %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (r *SQLRepository) one(ctx context.Context, query string, args ...any) (*Book, error) {
	var b Book
	err := r.db.GetContext(ctx, &b, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("books: query: %w", err)
	}
	return &b, nil
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]Book, error) {
	out := []Book{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("books: query: %w", err)
	}
	return out, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("books: rows affected for %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
