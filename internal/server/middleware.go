package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parleyhq/parley/internal/observability"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"go.uber.org/zap"
)

const sessionContextKey = "parley.session"

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func metricsMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// requireSession authenticates the request from the session cookie. Any
// validation failure clears the cookie; the cascading closes already
// happened inside Validate.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.cookies.ReadSessionID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authorized"})
			return
		}
		session, err := s.sessionSvc.Validate(c.Request.Context(), id)
		if err != nil {
			s.cookies.Clear(c)
			abortWithError(c, err)
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func (s *Server) requireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session.User == nil || !session.User.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) sessiondomain.Session {
	value, _ := c.Get(sessionContextKey)
	session, _ := value.(sessiondomain.Session)
	return session
}
