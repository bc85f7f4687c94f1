package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parleyhq/parley/internal/auth/session"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"go.uber.org/zap"
)

func (s *Server) handleLogin(c *gin.Context) {
	var req sessiondomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	opened, err := s.sessionSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	expiresAt := s.sessionExpiry(opened)
	s.cookies.Set(c, opened.ID, expiresAt)

	others, err := s.sessionSvc.OtherOpenSessions(c.Request.Context(), opened.ID)
	if err != nil {
		s.log.Warn("listing other sessions failed", zap.Error(err))
		others = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"session_uuid":        opened.ID,
		"expires_at":          expiresAt,
		"other_open_sessions": len(others),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	current := currentSession(c)
	if err := s.sessionSvc.Logout(c.Request.Context(), current.ID); err != nil {
		abortWithError(c, err)
		return
	}
	s.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSessionExp(c *gin.Context) {
	current := currentSession(c)
	others, err := s.sessionSvc.OtherOpenSessions(c.Request.Context(), current.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_uuid":        current.ID,
		"expires_at":          s.sessionExpiry(current),
		"other_open_sessions": len(others),
	})
}

func (s *Server) handleCloseOthers(c *gin.Context) {
	current := currentSession(c)
	closed, err := s.sessionSvc.CloseOthers(c.Request.Context(), current.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}

// sessionExpiry is the department-local midnight the sweeper will close the
// session at.
func (s *Server) sessionExpiry(sess sessiondomain.Session) time.Time {
	offset := time.Duration(0)
	if sess.User != nil && sess.User.Department != nil {
		if parsed, err := sess.User.Department.Offset(); err == nil {
			offset = parsed
		}
	}
	return session.MidnightAfter(sess.LoginTS, offset)
}
