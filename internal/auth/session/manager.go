package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/config"
	"go.uber.org/fx"
)

const DefaultCookieName = "session_uuid"

var Module = fx.Provide(NewManager)

// Manager manages the session cookie. The cookie expires at the next
// department-local midnight, matching the server-side sweep.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

func (m *Manager) ReadSessionID(c *gin.Context) (uuid.UUID, bool) {
	value, err := c.Cookie(m.cookieName)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (m *Manager) Set(c *gin.Context, sessionID uuid.UUID, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, sessionID.String(), maxAge, "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// MidnightAfter returns the first department-local midnight after t,
// expressed back in UTC.
func MidnightAfter(t time.Time, offset time.Duration) time.Time {
	local := t.UTC().Add(offset)
	y, m, d := local.Date()
	nextLocal := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return nextLocal.Add(-offset)
}
