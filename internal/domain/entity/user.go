package entity

import "time"

// User represents an account that can author posts.
type User struct {
	id        int64
	email     string
	name      *string
	posts     []*Post
	createdAt time.Time
}

// NewUser creates a User that has not been persisted yet.
func NewUser(email string, name *string) *User {
	return &User{
		email:     email,
		name:      name,
		createdAt: time.Now(),
	}
}

// RestoreUser creates a User entity from stored data.
func RestoreUser(id int64, email string, name *string, createdAt time.Time) *User {
	return &User{
		id:        id,
		email:     email,
		name:      name,
		createdAt: createdAt,
	}
}

// ID returns the user ID, zero until persisted.
func (u *User) ID() int64 { return u.id }

// Email returns the user's email address.
func (u *User) Email() string { return u.email }

// Name returns the optional display name.
func (u *User) Name() *string { return u.name }

// Posts returns the posts loaded with the user.
func (u *User) Posts() []*Post { return u.posts }

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// AssignID records the identifier allocated by storage.
func (u *User) AssignID(id int64, createdAt time.Time) {
	u.id = id
	u.createdAt = createdAt
}

// AttachPosts sets the user's posts.
func (u *User) AttachPosts(posts []*Post) {
	u.posts = posts
}
