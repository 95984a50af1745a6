package domain

import (
	"context"
	"strings"
)

// User mirrors the remote users resource. Every field except ID is optional
// on the wire; records created locally only carry a name, an email and a
// company name.
type User struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name,omitempty"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Address  *Address `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Company  *Company `json:"company,omitempty"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase,omitempty"`
	BS          string `json:"bs,omitempty"`
}

// FirstName returns the first space-separated token of the display name.
func (u User) FirstName() string {
	first, _ := SplitName(u.Name)
	return first
}

// LastName returns the second space-separated token of the display name.
func (u User) LastName() string {
	_, last := SplitName(u.Name)
	return last
}

// Department returns the company name, or "" when the user has no company.
func (u User) Department() string {
	if u.Company == nil {
		return ""
	}
	return u.Company.Name
}

// SplitName splits a display name on single spaces and returns the first two
// tokens. Tokens past the second are dropped, so "Mrs. Dennis Schulist"
// becomes ("Mrs.", "Dennis").
func SplitName(name string) (first, last string) {
	if name == "" {
		return "", ""
	}
	parts := strings.Split(name, " ")
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// JoinName builds a display name from its parts. Both parts are always
// joined with a single space, even when one of them is empty.
func JoinName(first, last string) string {
	return first + " " + last
}

// Draft is the client-side form state shared by the add and edit flows.
type Draft struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// IsZero reports whether every field of the draft is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// EditDraft is a Draft bound to an existing user.
type EditDraft struct {
	ID int64 `json:"id"`
	Draft
}

// EditDraftFrom converts a user record into form state.
func EditDraftFrom(u User) EditDraft {
	first, last := SplitName(u.Name)
	return EditDraft{
		ID: u.ID,
		Draft: Draft{
			FirstName:  first,
			LastName:   last,
			Email:      u.Email,
			Department: u.Department(),
		},
	}
}

// UserFromDraft builds the local record that replaces or extends the list
// after a successful remote write.
func UserFromDraft(id int64, d Draft) User {
	return User{
		ID:      id,
		Name:    JoinName(d.FirstName, d.LastName),
		Email:   d.Email,
		Company: &Company{Name: d.Department},
	}
}

// UserAPI is the remote users resource.
type UserAPI interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, draft Draft) (*User, error)
	Update(ctx context.Context, draft EditDraft) (*User, error)
	Delete(ctx context.Context, id int64) error
}
