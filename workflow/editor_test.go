package workflow_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/workflow"
)

type fakePostStore struct {
	inserted []*models.Post
	updated  []*models.Post
	err      error
}

func (f *fakePostStore) Insert(ctx context.Context, post *models.Post) error {
	if f.err != nil {
		return f.err
	}
	post.ID = 101
	f.inserted = append(f.inserted, post)
	return nil
}

func (f *fakePostStore) Update(ctx context.Context, post *models.Post) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, post)
	return nil
}

type fakeImageStore struct {
	keys []string
	err  error
}

func (f *fakeImageStore) Save(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "/static/uploads/blog-images/" + key, nil
}

func stageTempFile(t *testing.T, e *workflow.Editor, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0o644))
	e.StageImage(path, name, int64(len("image-bytes")))
	return path
}

func str(s string) *string { return &s }

func TestNewCreateDefaults(t *testing.T) {
	e := workflow.NewCreate()
	assert.False(t, e.EditMode())
	assert.Empty(t, e.Fields.Title)
	assert.NotNil(t, e.Fields.Categories)
	assert.Empty(t, e.Fields.Categories)
	assert.False(t, e.Fields.Featured)
}

func TestNewEditHydratesFromRecord(t *testing.T) {
	p := &models.Post{
		ID:         42,
		Title:      "Whey Protein Deep Dive",
		Slug:       "whey-protein-deep-dive",
		Excerpt:    "short",
		Content:    "long",
		Image:      "/static/uploads/blog-images/x.png",
		Author:     "Sam",
		Categories: datatypes.NewJSONSlice([]string{"Protein", "Supplements"}),
		Featured:   true,
	}

	e := workflow.NewEdit(p)
	assert.True(t, e.EditMode())
	assert.Equal(t, uint(42), e.PostID)
	assert.Equal(t, p.Title, e.Fields.Title)
	assert.Equal(t, []string{"Protein", "Supplements"}, e.Fields.Categories)

	// Draft category edits must not bleed back into the source record.
	e.ToggleCategory("Protein")
	assert.Equal(t, datatypes.NewJSONSlice([]string{"Protein", "Supplements"}), p.Categories)
}

func TestApplyPatchLeavesUnsetFieldsAlone(t *testing.T) {
	e := workflow.NewCreate()
	e.Apply(workflow.Patch{Title: str("First")})
	e.Apply(workflow.Patch{Author: str("Sam")})

	assert.Equal(t, "First", e.Fields.Title)
	assert.Equal(t, "Sam", e.Fields.Author)
	assert.Empty(t, e.Fields.Slug)
}

func TestToggleCategory(t *testing.T) {
	e := workflow.NewCreate()
	e.ToggleCategory("Protein")
	assert.Equal(t, []string{"Protein"}, e.Fields.Categories)

	// Double toggle restores the original set.
	e.ToggleCategory("Protein")
	assert.Empty(t, e.Fields.Categories)
}

func TestAddCustomCategory(t *testing.T) {
	e := workflow.NewCreate()

	// Empty input is a no-op.
	assert.False(t, e.AddCustomCategory())

	e.SetCustomInput("Keto")
	assert.True(t, e.AddCustomCategory())
	assert.Equal(t, []string{"Keto"}, e.Fields.Categories)
	assert.Empty(t, e.CustomInput)

	// Duplicates are refused and the input is kept for correction.
	e.SetCustomInput("Keto")
	assert.False(t, e.AddCustomCategory())
	assert.Equal(t, []string{"Keto"}, e.Fields.Categories)
	assert.Equal(t, "Keto", e.CustomInput)
}

func TestRemoveCategory(t *testing.T) {
	e := workflow.NewCreate()
	e.ToggleCategory("Protein")
	e.ToggleCategory("Recipes")

	e.RemoveCategory("Protein")
	assert.Equal(t, []string{"Recipes"}, e.Fields.Categories)

	// Removing an absent label is a no-op.
	e.RemoveCategory("Protein")
	assert.Equal(t, []string{"Recipes"}, e.Fields.Categories)
}

func TestSubmitCreateInsertsOnce(t *testing.T) {
	store := &fakePostStore{}
	e := workflow.NewCreate()
	e.Apply(workflow.Patch{
		Title:   str("Whey Protein Deep Dive"),
		Slug:    str("whey-protein-deep-dive"),
		Excerpt: str("short"),
		Content: str("long"),
		Author:  str("Sam"),
	})
	e.ToggleCategory("Protein")
	e.ToggleCategory("Protein")
	e.ToggleCategory("Protein") // toggled on, off, on again

	post, err := e.Submit(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	assert.Empty(t, store.updated)

	// Store-assigned fields are left to the store.
	assert.Equal(t, uint(101), post.ID)
	assert.Zero(t, post.Views)
	assert.True(t, post.Date.IsZero())
	assert.Equal(t, datatypes.NewJSONSlice([]string{"Protein"}), post.Categories)
}

func TestSubmitEditUpdatesFullRecord(t *testing.T) {
	store := &fakePostStore{}
	e := workflow.NewEdit(&models.Post{
		ID:         42,
		Title:      "Old Title",
		Slug:       "old",
		Excerpt:    "old excerpt",
		Content:    "old content",
		Author:     "Sam",
		Categories: datatypes.NewJSONSlice([]string{"Nutrition"}),
	})
	e.Apply(workflow.Patch{Title: str("New Title")})

	post, err := e.Submit(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, store.updated, 1)
	assert.Empty(t, store.inserted)
	assert.Equal(t, uint(42), post.ID)
	assert.Equal(t, "New Title", post.Title)
	assert.Equal(t, "old excerpt", post.Excerpt)
}

func TestSubmitValidation(t *testing.T) {
	store := &fakePostStore{}
	e := workflow.NewCreate()
	e.Apply(workflow.Patch{Title: str("Title Only")})

	_, err := e.Submit(context.Background(), store)
	assert.ErrorIs(t, err, workflow.ErrValidation)
	assert.Empty(t, store.inserted)

	// Whitespace does not satisfy a required field.
	e.Apply(workflow.Patch{
		Slug:    str("s"),
		Excerpt: str("   "),
		Content: str("c"),
		Author:  str("a"),
	})
	_, err = e.Submit(context.Background(), store)
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

func TestSubmitStoreFailureLeavesDraft(t *testing.T) {
	store := &fakePostStore{err: errors.New("down")}
	e := workflow.NewCreate()
	e.Apply(workflow.Patch{
		Title:   str("T"),
		Slug:    str("t"),
		Excerpt: str("e"),
		Content: str("c"),
		Author:  str("a"),
	})

	_, err := e.Submit(context.Background(), store)
	assert.Error(t, err)
	assert.Equal(t, "T", e.Fields.Title)
}

func TestUploadImageWithoutStagedFile(t *testing.T) {
	store := &fakeImageStore{}
	e := workflow.NewCreate()

	_, err := e.UploadImage(context.Background(), store)
	assert.ErrorIs(t, err, workflow.ErrValidation)
	assert.Empty(t, store.keys)
}

func TestUploadImageSetsFieldAndDiscardsStaged(t *testing.T) {
	store := &fakeImageStore{}
	e := workflow.NewCreate()
	path := stageTempFile(t, e, "photo.PNG")

	url, err := e.UploadImage(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, store.keys, 1)

	key := store.keys[0]
	assert.True(t, strings.HasPrefix(key, "post-image-"))
	assert.True(t, strings.HasSuffix(key, ".png"), "extension is lowercased: %s", key)
	assert.Equal(t, "/static/uploads/blog-images/"+key, url)
	assert.Equal(t, url, e.Fields.Image)

	assert.Nil(t, e.Staged)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged temp file is removed after upload")
}

func TestUploadImageFailureKeepsStaged(t *testing.T) {
	store := &fakeImageStore{err: errors.New("storage down")}
	e := workflow.NewCreate()
	path := stageTempFile(t, e, "photo.png")

	_, err := e.UploadImage(context.Background(), store)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, workflow.ErrValidation)
	require.NotNil(t, e.Staged)
	assert.Equal(t, path, e.Staged.Path)
	assert.Empty(t, e.Fields.Image)
}

func TestRestagingReplacesPreviousFile(t *testing.T) {
	e := workflow.NewCreate()
	first := stageTempFile(t, e, "a.png")
	second := stageTempFile(t, e, "b.png")

	_, statErr := os.Stat(first)
	assert.True(t, os.IsNotExist(statErr), "replaced staged file is removed")
	assert.Equal(t, second, e.Staged.Path)
}

func TestCancelDiscardsStaged(t *testing.T) {
	e := workflow.NewCreate()
	path := stageTempFile(t, e, "a.png")

	e.Cancel()
	assert.Nil(t, e.Staged)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSnapshotIsIsolatedFromDraft(t *testing.T) {
	e := workflow.NewCreate()
	e.ToggleCategory("Protein")

	snap := e.Snapshot()
	snap.Fields.Categories[0] = "mutated"
	assert.Equal(t, []string{"Protein"}, e.Fields.Categories)
}

// Drafts are shared by concurrent requests for the same id; mutations and
// snapshots from multiple goroutines must serialize. Run with -race.
func TestConcurrentDraftMutations(t *testing.T) {
	s := workflow.NewStore()
	e := workflow.NewCreate()
	id := s.Open(e)

	var wg sync.WaitGroup
	toggle := func(label string, times int) {
		defer wg.Done()
		for i := 0; i < times; i++ {
			if ed, ok := s.Get(id); ok {
				ed.ToggleCategory(label)
			}
		}
	}

	wg.Add(3)
	go toggle("Protein", 100) // even count, ends absent
	go toggle("Recipes", 101) // odd count, ends present
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if ed, ok := s.Get(id); ok {
				_ = ed.Snapshot()
			}
		}
	}()
	wg.Wait()

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, []string{"Recipes"}, got.Snapshot().Fields.Categories)
}

func TestStoreLifecycle(t *testing.T) {
	s := workflow.NewStore()
	e := workflow.NewCreate()
	id := s.Open(e)
	require.NotEmpty(t, id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, e, got)

	s.Close(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
}
