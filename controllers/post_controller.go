package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthyfries/reviewsite/listing"
	"github.com/healthyfries/reviewsite/repository"
	"github.com/healthyfries/reviewsite/utils"
)

// PostController serves the public read side: the filtered/paginated review
// listing and the three home-page shapes (featured, latest, most viewed).
type PostController struct {
	repo repository.PostRepository
}

// NewPostController creates a new PostController instance.
func NewPostController(repo repository.PostRepository) *PostController {
	return &PostController{repo: repo}
}

type cacheWrapper struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ListPosts returns one page of the review listing. Filtering and pagination
// run in memory over the full date-ordered set, so the same engine the tests
// exercise decides exactly what each page contains.
func (p *PostController) ListPosts(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	search := strings.TrimSpace(ctx.Query("search"))
	page := 1
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil && v > 0 {
		page = v
	}

	// Cache only searchless pages of known categories; search terms and
	// arbitrary category values would mint unbounded keys.
	cacheable := search == "" && (category == "" || listing.KnownCategory(category))
	cacheKey := fmt.Sprintf("cache:posts:list:cat=%s:page=%d", category, page)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	posts, err := p.repo.ListAll(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	result := listing.Apply(posts, category, search, page)
	payload := gin.H{
		"items": result.Items,
		"pagination": gin.H{
			"page":        result.Page,
			"page_size":   listing.PageSize,
			"total":       result.Total,
			"total_pages": result.PageCount,
		},
		"categories": listing.Categories,
	}

	if cacheable {
		utils.CacheSetJSON(cacheKey, cacheWrapper{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetFeatured returns the single highlighted post for the home page: the most
// recent among those flagged featured, or null when none is flagged.
func (p *PostController) GetFeatured(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:posts:featured"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.repo.ListFeatured(ctx.Request.Context(), 1)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load featured post")
		return
	}

	payload := gin.H{"post": nil}
	if len(posts) > 0 {
		payload["post"] = posts[0]
	}
	utils.CacheSetJSON("cache:posts:featured", cacheWrapper{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetLatest returns the three newest posts.
func (p *PostController) GetLatest(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:posts:latest"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.repo.ListLatest(ctx.Request.Context(), 3)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load latest posts")
		return
	}

	payload := gin.H{"items": posts}
	utils.CacheSetJSON("cache:posts:latest", cacheWrapper{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetTop returns the two most viewed posts.
func (p *PostController) GetTop(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:posts:top"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.repo.ListTopByViews(ctx.Request.Context(), 2)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load top posts")
		return
	}

	payload := gin.H{"items": posts}
	utils.CacheSetJSON("cache:posts:top", cacheWrapper{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns a single post and bumps its view counter. The detail
// response is never cached; a cached body would freeze the counter.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}

	post, err := p.repo.GetByID(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	// Best-effort view bump; a failed increment must not break the read.
	if err := p.repo.IncrementViews(ctx.Request.Context(), post.ID); err == nil {
		post.Views++
	} else if utils.Sugar != nil {
		utils.Sugar.Warnf("view increment failed for post %d: %v", post.ID, err)
	}

	utils.Success(ctx, gin.H{"post": post})
}
