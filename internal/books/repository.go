package books

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("book not found")

// Repository persists books. Lookups that match nothing return ErrNotFound;
// list queries return an empty slice instead.
type Repository interface {
	FindAll(ctx context.Context) ([]Book, error)
	FindByID(ctx context.Context, id int64) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	FindByAuthor(ctx context.Context, author string) ([]Book, error)
	SearchByTitle(ctx context.Context, keyword string) ([]Book, error)
	FindPublishedAfter(ctx context.Context, year int) ([]Book, error)

	// Insert stores b and sets b.ID.
	Insert(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}
