package server

import (
	"io"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/hasibdev/portfeed/feed"
	"github.com/hasibdev/portfeed/model"
	"github.com/hasibdev/portfeed/store"
	"github.com/pkg/errors"
)

// Handlers binds the feed services to the HTTP surface. Presentation chrome
// (rendering, navigation, delete confirmation) lives on the client; this
// layer only moves posts and statuses across the wire.
type Handlers struct {
	repo *feed.Repository
	ie   *feed.ImportExport
	bus  *gochannel.GoChannel
}

func NewHandlers(repo *feed.Repository, ie *feed.ImportExport, bus *gochannel.GoChannel) *Handlers {
	return &Handlers{repo: repo, ie: ie, bus: bus}
}

// Register mounts all routes on router.
func (h *Handlers) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/posts", h.listPosts)
		api.POST("/posts", h.createPost)
		api.GET("/posts/:id", h.getPost)
		api.DELETE("/posts/:id", h.deletePost)
		// Export/import live off the :id segment so "export" is never read
		// as a post id.
		api.GET("/export", h.exportPosts)
		api.POST("/import", h.importPosts)
		api.GET("/live", h.live)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

// listPosts returns the feed split into its two display groups, each sorted
// newest first.
func (h *Handlers) listPosts(c *gin.Context) {
	external, internal := model.SplitGroups(h.repo.List(c.Request.Context()))
	c.JSON(http.StatusOK, gin.H{
		"external": external,
		"internal": internal,
	})
}

// createPost accepts the editor form as multipart/form-data with fields
// title, external, content and an optional image file.
func (h *Handlers) createPost(c *gin.Context) {
	input := feed.SaveInput{
		Title:    c.PostForm("title"),
		External: c.PostForm("external"),
		Content:  c.PostForm("content"),
	}

	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded image"})
			return
		}
		defer f.Close()
		input.ImageData, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded image"})
			return
		}
	}

	post, status, err := h.repo.Save(c.Request.Context(), input)
	if errors.Is(err, feed.ErrEmptyTitle) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "please add a title"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot save post"})
		return
	}

	code := http.StatusCreated
	if status == feed.StatusSavedLocally {
		// Degraded success: the post exists on this device only.
		code = http.StatusOK
	}
	c.JSON(code, gin.H{"status": string(status), "post": post})
}

func (h *Handlers) getPost(c *gin.Context) {
	post, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "cannot reach the post store"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// deletePost removes a post. A remote delete failure is an actionable error
// for the caller: the post may still exist and there is no mirror to recover
// it from.
func (h *Handlers) deletePost(c *gin.Context) {
	err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete failed, the post may still exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// exportPosts downloads the device-local post list as an indented JSON
// array. Remote posts are not included.
func (h *Handlers) exportPosts(c *gin.Context) {
	raw, err := h.ie.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot export posts"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="portfolio-posts.json"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// importPosts merges a JSON array of partial post records into the
// device-local list.
func (h *Handlers) importPosts(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read import payload"})
		return
	}
	count, err := h.ie.Import(raw)
	if errors.Is(err, feed.ErrNotArray) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "import payload must be a JSON array"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot import posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}
