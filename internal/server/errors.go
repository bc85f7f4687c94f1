package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	"github.com/parleyhq/parley/internal/recognition"
	"github.com/parleyhq/parley/internal/registry"
	"github.com/parleyhq/parley/internal/relay"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"github.com/parleyhq/parley/internal/translation"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
)

// abortWithError maps domain errors onto HTTP statuses. Unknown errors
// become opaque 500s so internals never leak to the client.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal_error"

	switch {
	case errors.Is(err, sessiondomain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, sessiondomain.ErrSessionNotFound),
		errors.Is(err, sessiondomain.ErrSessionClosed),
		errors.Is(err, sessiondomain.ErrUserNotActive):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, conversationdomain.ErrNoConversation),
		errors.Is(err, conversationdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, departmentdomain.ErrNotFound),
		errors.Is(err, relay.ErrTextNotFound),
		errors.Is(err, relay.ErrAudioNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, conversationdomain.ErrClosed):
		status, message = http.StatusGone, err.Error()
	case errors.Is(err, relay.ErrNotReady),
		errors.Is(err, userdomain.ErrLoginTaken),
		errors.Is(err, userdomain.ErrHasConversations),
		errors.Is(err, departmentdomain.ErrHasUsers),
		errors.Is(err, departmentdomain.ErrDefault):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, relay.ErrUnsupportedLang),
		errors.Is(err, userdomain.ErrInvalidLogin),
		errors.Is(err, userdomain.ErrInvalidPassword),
		errors.Is(err, departmentdomain.ErrInvalidName),
		errors.Is(err, departmentdomain.ErrInvalidOffset):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, registry.ErrInconsistency):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, recognition.ErrRecognitionFailed),
		errors.Is(err, translation.ErrTranslationFailed):
		status, message = http.StatusBadGateway, err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
