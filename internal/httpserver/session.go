package httpserver

import (
	"net/http"
	"time"

	"chaeen-storefront/internal/service/gate"
	"chaeen-storefront/internal/service/inventory"
	"chaeen-storefront/internal/service/shop"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "chaeen_admin"
	scopeKey    = "admin_scope"

	valToken   = "token"
	valState   = "gate_state"
	valMessage = "gate_message"
	valPending = "pending_delete"
)

// NewSessionStore returns a signed cookie store for the admin session.
func NewSessionStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// cookieTokens keeps the access token inside the cookie session.
type cookieTokens struct {
	sess *sessions.Session
}

func (t cookieTokens) Token() string {
	v, _ := t.sess.Values[valToken].(string)
	return v
}

func (t cookieTokens) SetToken(token string) {
	if token == "" {
		delete(t.sess.Values, valToken)
		return
	}
	t.sess.Values[valToken] = token
}

// adminScope is the per-request view of the admin session.
type adminScope struct {
	sess *sessions.Session
	api  *shop.Service
	gate *gate.Gate
	dash *inventory.Dashboard
}

func (h *handlers) sessionMiddleware(c *gin.Context) {
	sess, err := h.deps.Sessions.Get(c.Request, sessionName)
	if err != nil {
		// Undecodable cookies come back as a fresh session.
		h.logger.Printf("admin session: %v", err)
	}
	api := h.deps.Shop.WithTokens(cookieTokens{sess: sess})

	state, _ := sess.Values[valState].(string)
	message, _ := sess.Values[valMessage].(string)
	g := gate.Resume(api, gate.Snapshot{State: gate.State(state), Message: message})

	dash := inventory.New(api, h.deps.Cache, h.logger)
	if pending, _ := sess.Values[valPending].(string); pending != "" {
		dash.RequestDelete(pending)
	}

	c.Set(scopeKey, &adminScope{sess: sess, api: api, gate: g, dash: dash})
	c.Next()
}

func scopeFrom(c *gin.Context) *adminScope {
	return c.MustGet(scopeKey).(*adminScope)
}

// save writes gate and dashboard state back into the cookie. It must run
// before the response body is written.
func (s *adminScope) save(c *gin.Context) error {
	snap := s.gate.Snapshot()
	s.sess.Values[valState] = string(snap.State)
	if snap.Message != "" {
		s.sess.Values[valMessage] = snap.Message
	} else {
		delete(s.sess.Values, valMessage)
	}
	if pending := s.dash.PendingDelete(); pending != "" {
		s.sess.Values[valPending] = pending
	} else {
		delete(s.sess.Values, valPending)
	}
	return s.sess.Save(c.Request, c.Writer)
}

// respond persists the session and writes a JSON body.
func (h *handlers) respond(c *gin.Context, status int, body any) {
	if err := scopeFrom(c).save(c); err != nil {
		h.logger.Printf("admin session save: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
		return
	}
	c.JSON(status, body)
}
