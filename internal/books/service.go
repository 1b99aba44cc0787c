package books

import (
	"context"
	"errors"
	"time"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/events"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
)

// EventPublisher announces book lifecycle changes. Publishing is
// fire-and-forget: implementations report failures through logs only.
type EventPublisher interface {
	Publish(eventType events.EventType, bookID int64, title, author string)
}

// Service orchestrates book reads and writes. Every successful mutation is
// followed by a lifecycle event; the write and the publish are not atomic.
type Service struct {
	repo      Repository
	publisher EventPublisher
	now       func() time.Time
}

func NewService(repo Repository, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *Service) FindAll(ctx context.Context) ([]Book, error) {
	logger.Debug("finding all books", nil)
	return s.repo.FindAll(ctx)
}

func (s *Service) FindByID(ctx context.Context, id int64) (*Book, error) {
	logger.Debug("finding book by id", map[string]any{"id": id})
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	logger.Debug("finding book by isbn", map[string]any{"isbn": isbn})
	return s.repo.FindByISBN(ctx, isbn)
}

func (s *Service) FindByAuthor(ctx context.Context, author string) ([]Book, error) {
	logger.Debug("finding books by author", map[string]any{"author": author})
	return s.repo.FindByAuthor(ctx, author)
}

func (s *Service) SearchByTitle(ctx context.Context, keyword string) ([]Book, error) {
	logger.Debug("searching books by title", map[string]any{"keyword": keyword})
	return s.repo.SearchByTitle(ctx, keyword)
}

func (s *Service) FindPublishedAfter(ctx context.Context, year int) ([]Book, error) {
	logger.Debug("finding books published after year", map[string]any{"year": year})
	return s.repo.FindPublishedAfter(ctx, year)
}

// Create stamps both timestamps with the same instant, stores the book and
// publishes BOOK_CREATED.
func (s *Service) Create(ctx context.Context, fields Fields) (*Book, error) {
	logger.Info("creating book", map[string]any{"title": fields.Title})

	now := s.now()
	b := &Book{CreatedAt: now, UpdatedAt: now}
	fields.applyTo(b)

	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BookCreated, b.ID, b.Title, b.Author)
	return b, nil
}

// Update replaces title, author, isbn and published year of an existing book.
// A missing book yields ErrNotFound with no write and no event.
func (s *Service) Update(ctx context.Context, id int64, fields Fields) (*Book, error) {
	logger.Info("updating book", map[string]any{"id": id})

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields.applyTo(b)
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BookUpdated, b.ID, b.Title, b.Author)
	return b, nil
}

// Delete removes the book and reports whether it existed. The BOOK_DELETED
// event carries the title and author read before deletion.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	logger.Info("deleting book", map[string]any{"id": id})

	b, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	s.publisher.Publish(events.BookDeleted, b.ID, b.Title, b.Author)
	return true, nil
}
