package entity

import "time"

// Post is a piece of content written by a user.
type Post struct {
	id        int64
	title     string
	content   *string
	authorID  int64
	createdAt time.Time
}

// NewPost creates a Post that has not been persisted yet.
func NewPost(title string, content *string, authorID int64) *Post {
	return &Post{
		title:     title,
		content:   content,
		authorID:  authorID,
		createdAt: time.Now(),
	}
}

// RestorePost creates a Post entity from stored data.
func RestorePost(id int64, title string, content *string, authorID int64, createdAt time.Time) *Post {
	return &Post{
		id:        id,
		title:     title,
		content:   content,
		authorID:  authorID,
		createdAt: createdAt,
	}
}

func (p *Post) ID() int64            { return p.id }
func (p *Post) Title() string        { return p.title }
func (p *Post) Content() *string     { return p.content }
func (p *Post) AuthorID() int64      { return p.authorID }
func (p *Post) CreatedAt() time.Time { return p.createdAt }

// AssignID records the identifier allocated by storage.
func (p *Post) AssignID(id int64, createdAt time.Time) {
	p.id = id
	p.createdAt = createdAt
}
