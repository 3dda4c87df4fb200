package repository

import (
	"context"

	"github.com/and161185/notepad/internal/model"
)

// NoteRepository provides remote CRUD over the authenticated user's notes.
// Every call carries the bearer token explicitly.
type NoteRepository interface {
	// List returns all notes owned by the token's user.
	List(ctx context.Context, token string) ([]model.Note, error)

	// Create stores a new note and returns it as the server saved it.
	Create(ctx context.Context, token, title, content string) (model.Note, error)

	// Update replaces title and content of note id and returns the stored note.
	Update(ctx context.Context, token, id, title, content string) (model.Note, error)

	// Delete removes note id. Deleting an absent note is not an error.
	Delete(ctx context.Context, token, id string) error
}
