package store

import (
	"encoding/json"
	"net/url"
	"time"
)

// Book is one catalog entry, shared across all users. Field names match
// the persisted JSON exactly; changing a tag silently orphans old data.
type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	ImageURI    string  `json:"imageUri,omitempty"`
}

// ImageURL returns the cover URI when it points at something a viewer
// can actually load (http, https or file), and "" otherwise.
func (b Book) ImageURL() string {
	u, err := url.Parse(b.ImageURI)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "file":
		return b.ImageURI
	}
	return ""
}

// User is one account record. The password is stored as entered; login
// compares it verbatim.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// AvatarURL applies the same scheme check as Book.ImageURL.
func (u User) AvatarURL() string {
	b := Book{ImageURI: u.Avatar}
	return b.ImageURL()
}

// ReadingStatus is the user's progress marker for one book. The empty
// string means "not set".
type ReadingStatus string

const (
	StatusNone       ReadingStatus = ""
	StatusWantToRead ReadingStatus = "wantToRead"
	StatusReading    ReadingStatus = "reading"
	StatusRead       ReadingStatus = "read"
)

// Valid reports whether s is one of the recognised markers.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusNone, StatusWantToRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// Note is one dated personal note on a book.
type Note struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// NoteList decodes both the current representation (a sequence of
// notes) and the legacy one (a bare string). A legacy value upgrades to
// a one-element list stamped with the read time; the upgraded form is
// only written back on the next explicit save.
type NoteList []Note

func (n *NoteList) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		if legacy == "" {
			*n = nil
			return nil
		}
		*n = NoteList{{Text: legacy, Date: time.Now().UTC()}}
		return nil
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return err
	}
	*n = notes
	return nil
}

// Annotation is one user's private state for one book. Records are
// created lazily on first mutation; a missing record reads as the zero
// value.
type Annotation struct {
	IsOwned       bool          `json:"isOwned,omitempty"`
	IsFavorite    bool          `json:"isFavorite,omitempty"`
	ReadingStatus ReadingStatus `json:"readingStatus,omitempty"`
	Notes         NoteList      `json:"notes,omitempty"`
}
