package events

import "time"

type EventType string

const (
	BookCreated EventType = "BOOK_CREATED"
	BookUpdated EventType = "BOOK_UPDATED"
	BookDeleted EventType = "BOOK_DELETED"
)

// BookEvent is the lifecycle notification carried on the book topic.
// It is immutable once built and never persisted by this service.
type BookEvent struct {
	EventID    string    `json:"eventId"`
	EventType  EventType `json:"eventType"`
	BookID     int64     `json:"bookId"`
	BookTitle  string    `json:"bookTitle"`
	BookAuthor string    `json:"bookAuthor"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e BookEvent) fields() map[string]any {
	return map[string]any{
		"eventId":   e.EventID,
		"eventType": string(e.EventType),
		"bookId":    e.BookID,
		"title":     e.BookTitle,
		"author":    e.BookAuthor,
		"timestamp": e.Timestamp,
	}
}
