// Package workflow implements the admin create/edit form as a server-held
// state machine. A draft is opened in create or edit mode, mutated through
// field and category operations, optionally given an uploaded image, and
// finally submitted as an insert or a full-record update.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/healthyfries/reviewsite/models"
)

// ErrValidation marks locally-refused transitions; no backend call was made.
var ErrValidation = errors.New("validation failed")

// PostStore is the write half of the repository the editor submits through.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
}

// ImageStore uploads a binary under a storage key and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) (string, error)
}

// Fields is the editable shape of a post. It deliberately excludes id, date
// and views, which are store-assigned.
type Fields struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Image      string   `json:"image"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
	Featured   bool     `json:"featured"`
}

// Patch carries optional scalar field changes; nil means "leave unchanged".
type Patch struct {
	Title    *string `json:"title"`
	Slug     *string `json:"slug"`
	Excerpt  *string `json:"excerpt"`
	Content  *string `json:"content"`
	Image    *string `json:"image"`
	Author   *string `json:"author"`
	Featured *bool   `json:"featured"`
}

// StagedImage is a locally buffered upload waiting for UploadImage.
type StagedImage struct {
	Path string // temp file on disk
	Name string // original client filename, source of the extension
	Size int64
}

// Editor is one active draft. There is no version check between submits
// (last write wins), but the draft itself is shared by concurrent requests
// for the same id, so every mutation and read-out goes through the mutex.
// ID and PostID never change after the draft is opened; ExpiresAt is only
// touched under the store's lock.
type Editor struct {
	ID        string
	PostID    uint // zero in create mode
	ExpiresAt time.Time

	mu          sync.Mutex
	Fields      Fields
	CustomInput string
	Staged      *StagedImage
}

// State is a consistent snapshot of a draft for serialization.
type State struct {
	ID          string `json:"id"`
	PostID      uint   `json:"post_id"`
	Fields      Fields `json:"fields"`
	CustomInput string `json:"custom_input"`
}

// Snapshot copies the draft state so callers can serialize it without
// holding the lock or observing a half-applied mutation.
func (e *Editor) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	fields := e.Fields
	fields.Categories = append([]string(nil), e.Fields.Categories...)
	return State{
		ID:          e.ID,
		PostID:      e.PostID,
		Fields:      fields,
		CustomInput: e.CustomInput,
	}
}

// NewCreate opens a draft with type-appropriate empty defaults.
func NewCreate() *Editor {
	return &Editor{Fields: Fields{Categories: []string{}}}
}

// NewEdit opens a draft hydrated verbatim from an existing record.
func NewEdit(post *models.Post) *Editor {
	cats := make([]string, len(post.Categories))
	copy(cats, post.Categories)
	return &Editor{
		PostID: post.ID,
		Fields: Fields{
			Title:      post.Title,
			Slug:       post.Slug,
			Excerpt:    post.Excerpt,
			Content:    post.Content,
			Image:      post.Image,
			Author:     post.Author,
			Categories: cats,
			Featured:   post.Featured,
		},
	}
}

// EditMode reports whether Submit will update rather than insert.
func (e *Editor) EditMode() bool {
	return e.PostID != 0
}

// Apply merges a scalar field patch into the draft.
func (e *Editor) Apply(p Patch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.Title != nil {
		e.Fields.Title = *p.Title
	}
	if p.Slug != nil {
		e.Fields.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		e.Fields.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		e.Fields.Content = *p.Content
	}
	if p.Image != nil {
		e.Fields.Image = *p.Image
	}
	if p.Author != nil {
		e.Fields.Author = *p.Author
	}
	if p.Featured != nil {
		e.Fields.Featured = *p.Featured
	}
}

// ToggleCategory adds the label when absent and removes it when present.
func (e *Editor) ToggleCategory(c string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, have := range e.Fields.Categories {
		if have == c {
			e.Fields.Categories = append(e.Fields.Categories[:i], e.Fields.Categories[i+1:]...)
			return
		}
	}
	e.Fields.Categories = append(e.Fields.Categories, c)
}

// SetCustomInput records the pending custom-category text.
func (e *Editor) SetCustomInput(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.CustomInput = s
}

// AddCustomCategory adds the pending custom label when it is non-empty and
// not already present. The input is cleared only on a genuine add.
func (e *Editor) AddCustomCategory() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.CustomInput
	if c == "" {
		return false
	}
	for _, have := range e.Fields.Categories {
		if have == c {
			return false
		}
	}
	e.Fields.Categories = append(e.Fields.Categories, c)
	e.CustomInput = ""
	return true
}

// RemoveCategory drops the label if present.
func (e *Editor) RemoveCategory(c string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, have := range e.Fields.Categories {
		if have == c {
			e.Fields.Categories = append(e.Fields.Categories[:i], e.Fields.Categories[i+1:]...)
			return
		}
	}
}

// StageImage replaces any previously staged file with a new one. The image
// field stays untouched until UploadImage succeeds.
func (e *Editor) StageImage(path, name string, size int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discardStagedLocked()
	e.Staged = &StagedImage{Path: path, Name: name, Size: size}
}

// UploadImage pushes the staged file to object storage under a
// collision-resistant key (timestamp + original extension) and on success
// sets the editable image field to the public URL, which is also returned.
// On failure the staged file stays staged so the operation can be retried.
func (e *Editor) UploadImage(ctx context.Context, store ImageStore) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Staged == nil {
		return "", fmt.Errorf("%w: no image staged for upload", ErrValidation)
	}

	f, err := os.Open(e.Staged.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := fmt.Sprintf("post-image-%d%s", time.Now().UnixMilli(), strings.ToLower(filepath.Ext(e.Staged.Name)))
	url, err := store.Save(ctx, key, f, e.Staged.Size)
	if err != nil {
		return "", err
	}

	e.Fields.Image = url
	e.discardStagedLocked()
	return url, nil
}

// Submit validates required fields and persists: insert in create mode,
// full-record update in edit mode. Failure leaves the draft untouched.
func (e *Editor) Submit(ctx context.Context, store PostStore) (*models.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.validateLocked(); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:         e.PostID,
		Title:      e.Fields.Title,
		Slug:       e.Fields.Slug,
		Excerpt:    e.Fields.Excerpt,
		Content:    e.Fields.Content,
		Image:      e.Fields.Image,
		Author:     e.Fields.Author,
		Categories: datatypes.NewJSONSlice(uniqueStrings(e.Fields.Categories)),
		Featured:   e.Fields.Featured,
	}

	var err error
	if e.EditMode() {
		err = store.Update(ctx, post)
	} else {
		err = store.Insert(ctx, post)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Cancel discards in-progress edits including a staged-but-unuploaded file.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discardStagedLocked()
}

func (e *Editor) validateLocked() error {
	required := map[string]string{
		"title":   e.Fields.Title,
		"slug":    e.Fields.Slug,
		"excerpt": e.Fields.Excerpt,
		"content": e.Fields.Content,
		"author":  e.Fields.Author,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	return nil
}

func (e *Editor) discardStagedLocked() {
	if e.Staged != nil {
		_ = os.Remove(e.Staged.Path)
		e.Staged = nil
	}
}

// uniqueStrings removes duplicate labels while preserving insertion order.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
