package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	"gorm.io/datatypes"
)

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// handleJoinConversation resumes the session's open conversation when one
// exists, otherwise pairs with a waiting one or opens a new one. Reloading
// the page therefore never opens a duplicate.
func (s *Server) handleJoinConversation(c *gin.Context) {
	current := currentSession(c)

	conversation, err := s.resolver.Resume(c.Request.Context(), current.ID)
	if errors.Is(err, conversationdomain.ErrNoConversation) {
		conversation, err = s.resolver.JoinOrCreate(c.Request.Context(), current.ID, current.UserID)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (s *Server) handleConversationStatus(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	current := currentSession(c)
	status, err := s.relaySvc.Status(c.Request.Context(), id, current.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleSetLanguage(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var req struct {
		Lang string `json:"lang" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	current := currentSession(c)
	if err := s.relaySvc.SetLanguage(c.Request.Context(), id, current.ID, req.Lang); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLanguages(c *gin.Context) {
	langs, err := s.relaySvc.Languages(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, langs)
}

func (s *Server) handleSubmitUtterance(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	current := currentSession(c)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_audio"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_audio"})
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio_too_large"})
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	text, err := s.relaySvc.SubmitUtterance(c.Request.Context(), id, current.ID, data, mimeType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, text)
}

func (s *Server) handlePullMessage(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	current := currentSession(c)
	message, err := s.relaySvc.PullMessage(c.Request.Context(), id, current.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if message == nil {
		c.JSON(http.StatusOK, gin.H{"message": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	current := currentSession(c)
	history, err := s.relaySvc.History(c.Request.Context(), id, current.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleCloseConversation(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	current := currentSession(c)
	if err := s.resolver.Close(c.Request.Context(), id, current.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleQuestionnaire(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var answers datatypes.JSONMap
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	current := currentSession(c)
	if err := s.resolver.SaveQuestionnaire(c.Request.Context(), id, current.ID, answers); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleFixText(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var req struct {
		FixedText string `json:"fixed_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	current := currentSession(c)
	text, err := s.relaySvc.FixText(c.Request.Context(), id, current.ID, req.FixedText)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, text)
}

func (s *Server) handleGetAudio(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	audio, err := s.relaySvc.GetAudio(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, audio.MimeType, audio.Data)
}
