package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/repository"
	"github.com/healthyfries/reviewsite/storage"
	"github.com/healthyfries/reviewsite/utils"
	"github.com/healthyfries/reviewsite/workflow"
)

// AdminController drives the management panel: the post table, the draft
// create/edit workflow, image uploads and deletes.
type AdminController struct {
	repo   repository.PostRepository
	drafts *workflow.Store
	images *storage.LocalStore
	db     *gorm.DB
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(repo repository.PostRepository, drafts *workflow.Store, images *storage.LocalStore, db *gorm.DB) *AdminController {
	return &AdminController{repo: repo, drafts: drafts, images: images, db: db}
}

// ListPosts returns every post for the management table. No cache here so the
// table reflects writes immediately.
func (a *AdminController) ListPosts(ctx *gin.Context) {
	posts, err := a.repo.ListAll(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts, "total": len(posts)})
}

type openDraftRequest struct {
	PostID uint `json:"post_id"`
}

// OpenDraft opens a fresh draft. With post_id it hydrates an edit draft from
// the stored record; without, a create draft with empty defaults.
func (a *AdminController) OpenDraft(ctx *gin.Context) {
	var req openDraftRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request body")
			return
		}
	}

	var editor *workflow.Editor
	if req.PostID != 0 {
		post, err := a.repo.GetByID(ctx.Request.Context(), req.PostID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load post")
			return
		}
		editor = workflow.NewEdit(post)
	} else {
		editor = workflow.NewCreate()
	}

	a.drafts.Open(editor)
	utils.Success(ctx, gin.H{"draft": editor.Snapshot()})
}

// GetDraft returns the current draft state, refreshing its TTL.
func (a *AdminController) GetDraft(ctx *gin.Context) {
	editor, ok := a.drafts.Get(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "draft not found or expired")
		return
	}
	utils.Success(ctx, gin.H{"draft": editor.Snapshot()})
}

type patchDraftRequest struct {
	Op       string         `json:"op" binding:"required"`
	Patch    workflow.Patch `json:"patch"`
	Category string         `json:"category"`
	Value    string         `json:"value"`
}

// PatchDraft applies one mutation to the draft. Supported ops mirror the
// form controls: set (scalar fields), toggle_category, set_custom_input,
// add_custom_category and remove_category.
func (a *AdminController) PatchDraft(ctx *gin.Context) {
	editor, ok := a.drafts.Get(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "draft not found or expired")
		return
	}

	var req patchDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request body")
		return
	}

	switch req.Op {
	case "set":
		// Rich-text fields can carry markup; scrub them before they enter
		// the draft so what renders later is already clean.
		if req.Patch.Excerpt != nil {
			clean := utils.Sanitize(*req.Patch.Excerpt)
			req.Patch.Excerpt = &clean
		}
		if req.Patch.Content != nil {
			clean := utils.Sanitize(*req.Patch.Content)
			req.Patch.Content = &clean
		}
		editor.Apply(req.Patch)
	case "toggle_category":
		if req.Category == "" {
			utils.Error(ctx, http.StatusBadRequest, 40032, "category is required")
			return
		}
		editor.ToggleCategory(req.Category)
	case "set_custom_input":
		editor.SetCustomInput(req.Value)
	case "add_custom_category":
		editor.AddCustomCategory()
	case "remove_category":
		if req.Category == "" {
			utils.Error(ctx, http.StatusBadRequest, 40032, "category is required")
			return
		}
		editor.RemoveCategory(req.Category)
	default:
		utils.Error(ctx, http.StatusBadRequest, 40033, "unknown op")
		return
	}

	utils.Success(ctx, gin.H{"draft": editor.Snapshot()})
}

// StageDraftImage buffers a multipart file on the draft. Nothing reaches
// object storage until UploadDraftImage; re-staging replaces the buffer.
func (a *AdminController) StageDraftImage(ctx *gin.Context) {
	editor, ok := a.drafts.Get(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "draft not found or expired")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "image file is required")
		return
	}

	cfg := config.Get()
	maxBytes := int64(cfg.UploadsMaxMB) * 1024 * 1024
	if file.Size > maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40035, fmt.Sprintf("file size exceeds %dMB", cfg.UploadsMaxMB))
		return
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("staged_%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename)))
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to buffer upload")
		return
	}

	editor.StageImage(tmpPath, file.Filename, file.Size)
	utils.Success(ctx, gin.H{"staged": gin.H{"name": file.Filename, "size": file.Size}})
}

// UploadDraftImage pushes the staged file to storage and sets the draft's
// image URL. The stored object starts unclaimed; submitting the draft with
// this URL claims it, otherwise the orphan cleaner removes it.
func (a *AdminController) UploadDraftImage(ctx *gin.Context) {
	editor, ok := a.drafts.Get(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "draft not found or expired")
		return
	}

	url, err := editor.UploadImage(ctx.Request.Context(), a.images)
	if err != nil {
		if errors.Is(err, workflow.ErrValidation) {
			utils.Error(ctx, http.StatusBadRequest, 40036, err.Error())
			return
		}
		utils.Sugar.Errorf("image upload failed for draft %s: %v", editor.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50033, "image upload failed")
		return
	}

	cfg := config.Get()
	record := models.UploadedFile{
		FilePath: a.images.Path(filepath.Base(url)),
		URL:      url,
		ExpireAt: time.Now().Add(time.Duration(cfg.UploadsOrphanTTL) * time.Minute),
	}
	if err := a.db.WithContext(ctx.Request.Context()).Create(&record).Error; err != nil {
		utils.Sugar.Warnf("failed to record uploaded file %s: %v", record.URL, err)
	}

	utils.Success(ctx, gin.H{"url": url})
}

// SubmitDraft validates and persists the draft, claims its image, closes the
// draft and invalidates the listing caches.
func (a *AdminController) SubmitDraft(ctx *gin.Context) {
	draftID := ctx.Param("id")
	editor, ok := a.drafts.Get(draftID)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "draft not found or expired")
		return
	}

	post, err := editor.Submit(ctx.Request.Context(), a.repo)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrValidation):
			utils.Error(ctx, http.StatusBadRequest, 40037, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40404, "post no longer exists")
		default:
			utils.Sugar.Errorf("draft submit failed for %s: %v", draftID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to save post")
		}
		return
	}

	if post.Image != "" {
		a.db.WithContext(ctx.Request.Context()).
			Model(&models.UploadedFile{}).
			Where("url = ?", post.Image).
			Update("claimed", true)
	}

	a.drafts.Close(draftID)
	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"post": post})
}

// CancelDraft discards the draft and any staged upload.
func (a *AdminController) CancelDraft(ctx *gin.Context) {
	a.drafts.Close(ctx.Param("id"))
	utils.Success(ctx, nil)
}

// DeletePost removes a post. Deleting an id that does not exist is a 404,
// not a silent success.
func (a *AdminController) DeletePost(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40038, "invalid post id")
		return
	}

	if err := a.repo.Delete(ctx.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Sugar.Errorf("delete failed for post %d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, nil)
}
