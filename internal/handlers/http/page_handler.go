package http

import (
	"net/http"
	"path/filepath"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PageHandler serves the call page. Room identifiers are minted client-side
// in the original design; visiting the bare host simply redirects to a fresh
// room URL, and the path segment is what the browser reads back as the room
// identifier for its join request.
type PageHandler struct {
	staticDir string
	directory ports.RoomDirectory
}

func NewPageHandler(staticDir string, directory ports.RoomDirectory) *PageHandler {
	return &PageHandler{
		staticDir: staticDir,
		directory: directory,
	}
}

func (h *PageHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.RedirectToFreshRoom)
	router.GET("/r/:room", h.RoomPage)
	router.GET("/api/rooms/:room", h.RoomInfo)
	router.Static("/static", h.staticDir)
}

// RedirectToFreshRoom sends the visitor to a room URL nobody else has.
func (h *PageHandler) RedirectToFreshRoom(c *gin.Context) {
	c.Redirect(http.StatusFound, "/r/"+uuid.New().String())
}

// RoomPage serves the call page; the client derives the room identifier from
// the URL path.
func (h *PageHandler) RoomPage(c *gin.Context) {
	c.File(filepath.Join(h.staticDir, "index.html"))
}

// RoomInfo reports whether a room is live and how many members it holds, so
// the page can warn about a full room before opening a socket.
func (h *PageHandler) RoomInfo(c *gin.Context) {
	room := domain.RoomID(c.Param("room"))

	members, err := h.directory.Peers(c.Request.Context(), room, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":    room,
		"exists":  h.directory.Exists(c.Request.Context(), room),
		"members": len(members),
	})
}
