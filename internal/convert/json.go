// Package convert maps remote API JSON payloads to domain models and back.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/notepad/internal/model"
)

// dateLayouts are accepted for the server "date" field, most specific first.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// --- notes (server -> client) ---

// NoteDTO is a note as the remote API returns it. Documents stored in MongoDB
// carry "_id"; other backends use "id".
type NoteDTO struct {
	MongoID string `json:"_id,omitempty"`
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
}

// ToModelNote converts a wire note to the domain struct.
func ToModelNote(in NoteDTO) (model.Note, error) {
	id := in.MongoID
	if id == "" {
		id = in.ID
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return model.Note{}, fmt.Errorf("note %q: %w", id, err)
	}
	return model.Note{ID: id, Title: in.Title, Content: in.Content, Date: date}, nil
}

// ToModelNotes converts a list of wire notes, failing on the first bad entry.
func ToModelNotes(in []NoteDTO) ([]model.Note, error) {
	out := make([]model.Note, 0, len(in))
	for i, dto := range in {
		n, err := ToModelNote(dto)
		if err != nil {
			return nil, fmt.Errorf("note[%d]: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseDate parses a server timestamp. Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// --- requests (client -> server) ---

// NoteInput is the body of create and update requests.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FromModelRegistration converts a domain registration to its request body.
func FromModelRegistration(r model.Registration) RegisterRequest {
	return RegisterRequest{Username: r.Username, Email: r.Email, Password: r.Password}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// FromModelCredentials converts domain credentials to a login request body.
func FromModelCredentials(c model.Credentials) LoginRequest {
	return LoginRequest{Username: c.Username, Email: c.Email, Password: c.Password}
}

// --- responses ---

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the generic {message} / {error} body.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever of Message/Error is set.
func (m MessageResponse) Text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}
