package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/and161185/notepad/internal/convert"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

// List returns all notes of the token's user.
func (c *Client) List(ctx context.Context, token string) ([]model.Note, error) {
	var out []convert.NoteDTO
	if err := c.do(ctx, http.MethodGet, "/api/notes", token, nil, &out); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	notes, err := convert.ToModelNotes(out)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", malformed(err))
	}
	return notes, nil
}

// Create posts a new note and returns the server copy.
func (c *Client) Create(ctx context.Context, token, title, content string) (model.Note, error) {
	var out convert.NoteDTO
	in := convert.NoteInput{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, "/api/notes", token, in, &out); err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	n, err := convert.ToModelNote(out)
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", malformed(err))
	}
	if !n.Persisted() {
		return model.Note{}, fmt.Errorf("create note: %w", malformed(errors.New("response has no id")))
	}
	return n, nil
}

// Update replaces title and content of note id.
func (c *Client) Update(ctx context.Context, token, id, title, content string) (model.Note, error) {
	var out convert.NoteDTO
	in := convert.NoteInput{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPut, notePath(id), token, in, &out); err != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", id, err)
	}
	n, err := convert.ToModelNote(out)
	if err != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", id, malformed(err))
	}
	if n.ID == "" {
		// some backends answer PUT without echoing the id
		n.ID = id
	}
	return n, nil
}

// Delete removes note id. A 404 is treated as success.
func (c *Client) Delete(ctx context.Context, token, id string) error {
	err := c.do(ctx, http.MethodDelete, notePath(id), token, nil, nil)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}

func malformed(err error) error {
	return &errs.APIError{Kind: errs.ErrNetwork, Message: "malformed response: " + err.Error()}
}
