package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/config"
	"github.com/ytget/ytdl-mini/internal/download"
	"github.com/ytget/ytdl-mini/internal/validator"
)

type urlRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ytdl-mini",
		"active":  s.state.ActiveCount(),
	})
}

func (s *Server) listDownloads(c *gin.Context) {
	items := s.state.ListDownloads()
	c.JSON(http.StatusOK, gin.H{
		"downloads": items,
		"total":     len(items),
	})
}

func (s *Server) createDownload(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'url' is required"})
		return
	}

	id, err := s.state.AddDownload(req.URL)
	switch {
	case errors.Is(err, download.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, download.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) getDownload(c *gin.Context) {
	item, ok := s.state.GetDownload(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteDownload(c *gin.Context) {
	id := c.Param("id")
	item, ok := s.state.RemoveDownload(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	s.hub.Broadcast(Message{Type: MessageRemoved, ID: id, Timestamp: time.Now()})
	c.JSON(http.StatusOK, item)
}

func (s *Server) clearCompleted(c *gin.Context) {
	n := s.state.ClearCompleted()
	if n > 0 {
		s.hub.Broadcast(Message{Type: MessageCleared, Count: n, Timestamp: time.Now()})
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func (s *Server) createPlaylist(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'url' is required"})
		return
	}
	if _, ok := validator.ExtractPlaylistID(req.URL); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a playlist URL"})
		return
	}

	ids, err := s.state.AddPlaylist(c.Request.Context(), req.URL)
	switch {
	case errors.Is(err, appstate.ErrPlaylistUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.logger.Warn("playlist expansion failed", "url", req.URL, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ids": ids, "total": len(ids)})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.GetSettings())
}

// updateSettings merges the request body over the current settings. Fields
// absent from the body keep their values.
func (s *Server) updateSettings(c *gin.Context) {
	settings := s.state.GetSettings()
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings body"})
		return
	}

	if err := s.state.UpdateSettings(settings); err != nil {
		if errors.Is(err, config.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("save") == "true" {
		if err := s.state.SaveSettings(); err != nil {
			if errors.Is(err, appstate.ErrNoSettingsPath) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, s.state.GetSettings())
}

func (s *Server) websocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the response
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.RegisterClient(client)
	client.StartPumps()
}
