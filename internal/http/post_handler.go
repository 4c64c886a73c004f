package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/service"
)

// PostHandler expone los casos de uso de posts del usuario autenticado.
type PostHandler struct {
	logger   *zap.Logger
	postServ *service.PostService
}

func NewPostHandler(logger *zap.Logger, postServ *service.PostService) *PostHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostHandler{
		logger:   logger,
		postServ: postServ,
	}
}

// CreatePost maneja POST /post/.
func (h *PostHandler) CreatePost(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, service.ErrUnauthorized)
		return
	}

	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.logger, service.ErrPayloadTooLarge)
			return
		}
		h.logger.Warn("invalid create post request", zap.Error(err))
		invalidRequest(c)
		return
	}

	postID, err := h.postServ.CreatePost(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post_id": postID})
}

// ListPosts maneja GET /post/.
func (h *PostHandler) ListPosts(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, service.ErrUnauthorized)
		return
	}

	posts, err := h.postServ.ListPosts(c.Request.Context(), principal)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// DeletePost maneja DELETE /post/?post_id=...
func (h *PostHandler) DeletePost(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, service.ErrUnauthorized)
		return
	}

	if err := h.postServ.DeletePost(c.Request.Context(), principal, c.Query("post_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "Post Deleted Successfully"})
}
