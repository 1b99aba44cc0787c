package books

import "time"

// Book is a catalog record. ID, CreatedAt and UpdatedAt are owned by the store
// and the service; callers only supply the descriptive fields.
type Book struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Author        string    `db:"author" json:"author"`
	ISBN          string    `db:"isbn" json:"isbn"`
	PublishedYear *int      `db:"published_year" json:"publishedYear"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Fields are the caller-supplied attributes of a Book. An update replaces all
// of them; there is no field-level merge.
type Fields struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear *int   `json:"publishedYear"`
}

func (f Fields) applyTo(b *Book) {
	b.Title = f.Title
	b.Author = f.Author
	b.ISBN = f.ISBN
	b.PublishedYear = f.PublishedYear
}
