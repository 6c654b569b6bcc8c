package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/cleverpad/pkg/core"
)

// noteDTO is the wire shape of a note. The backend sends integer ids and may
// omit timestamps.
type noteDTO struct {
	ID        flexID     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (d noteDTO) toNote() core.Note {
	n := core.Note{ID: string(d.ID), Title: d.Title, Content: d.Content}
	if d.CreatedAt != nil {
		n.CreatedAt = *d.CreatedAt
	}
	if d.UpdatedAt != nil {
		n.UpdatedAt = *d.UpdatedAt
	}
	return n
}

type noteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Repository implements core.Repository against the backend for one token.
type Repository struct {
	client *Client
	token  string
}

// NewRepository binds the client to a session token.
func NewRepository(client *Client, token string) *Repository {
	return &Repository{client: client, token: token}
}

func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	resp, err := r.client.doRequest(ctx, http.MethodGet, "/notes/", r.token, nil)
	if err != nil {
		return nil, err
	}
	var dtos []noteDTO
	if err := decodeResponse(resp, &dtos); err != nil {
		return nil, err
	}
	notes := make([]core.Note, 0, len(dtos))
	for _, d := range dtos {
		notes = append(notes, d.toNote())
	}
	return notes, nil
}

func (r *Repository) Create(ctx context.Context, title, content string) (core.Note, error) {
	resp, err := r.client.doRequest(ctx, http.MethodPost, "/notes/", r.token, noteInput{Title: title, Content: content})
	if err != nil {
		return core.Note{}, err
	}
	var d noteDTO
	if err := decodeResponse(resp, &d); err != nil {
		return core.Note{}, err
	}
	return d.toNote(), nil
}

func (r *Repository) Update(ctx context.Context, id, title, content string) error {
	resp, err := r.client.doRequest(ctx, http.MethodPut, notePath(id), r.token, noteInput{Title: title, Content: content})
	if err != nil {
		return err
	}
	if err := decodeResponse(resp, nil); err != nil {
		return fmt.Errorf("failed to update note %s: %w", id, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	resp, err := r.client.doRequest(ctx, http.MethodDelete, notePath(id), r.token, nil)
	if err != nil {
		return err
	}
	if err := decodeResponse(resp, nil); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "remote-repository"
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}
