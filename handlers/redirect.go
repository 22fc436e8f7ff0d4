package handlers

import (
	"errors"
	"net/http"

	"linklytics/services"

	"github.com/gin-gonic/gin"
)

// RedirectHandler serves the public redirect path. This is the only
// latency-sensitive endpoint: one lookup, one redirect, and a tracking job
// handed to the click queue without waiting for it.
type RedirectHandler struct {
	links  *services.LinkService
	clicks *services.ClickService
}

func NewRedirectHandler(links *services.LinkService, clicks *services.ClickService) *RedirectHandler {
	return &RedirectHandler{links: links, clicks: clicks}
}

func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.links.Resolve(code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrGone):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve link"})
		}
		return
	}

	h.clicks.Track(services.Click{
		LinkID:    link.ID,
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		IPAddress: c.ClientIP(),
	})

	c.Redirect(http.StatusFound, link.OriginalURL)
}
