package session

import (
	"fmt"
	"time"

	"gatherly/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the name of the session cookie.
const CookieName = "gatherly_session"

// Session is the per-browser state read at the start of a request. A nil
// Session means the request is anonymous.
type Session struct {
	ID       string
	User     string
	LoggedIn bool
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.LoggedIn && s.User != ""
}

// Store manages sessions in Redis keyed by an opaque ID. The cookie value is
// a server-signed JWT carrying only that ID, so the browser holds no session
// data and the server can revoke sessions unilaterally.
type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewStore returns a session store signing cookies with secret and expiring
// sessions after ttl.
func NewStore(rdb *redis.Client, secret string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }
func flashKey(id string) string   { return "session:" + id + ":flash" }

// localsKey caches the live session on the request so that Start, Flash,
// and Destroy within one request all see the same session even though the
// new cookie only exists on the response.
const localsKey = "session"

// Get reads and verifies the session cookie and loads the session from
// Redis. Missing, tampered, or expired sessions all come back as (nil, nil):
// the request is simply anonymous.
func (st *Store) Get(c *fiber.Ctx) (*Session, error) {
	if v, ok := c.Locals(localsKey).(*Session); ok {
		return v, nil
	}

	cookie := c.Cookies(CookieName)
	if cookie == "" {
		return nil, nil
	}

	id, ok := st.verifyCookie(cookie)
	if !ok {
		observability.SessionOperations.WithLabelValues("rejected").Inc()
		return nil, nil
	}

	data, err := st.rdb.HGetAll(c.UserContext(), sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	if len(data) == 0 {
		// Expired or destroyed server-side.
		return nil, nil
	}

	observability.SessionOperations.WithLabelValues("get").Inc()
	sess := &Session{
		ID:       id,
		User:     data["user"],
		LoggedIn: data["logged_in"] == "true",
	}
	c.Locals(localsKey, sess)
	return sess, nil
}

// Start creates a fresh logged-in session for user and sets the cookie. Any
// pending flashes from a prior anonymous session on the same browser move to
// the new session so login messages survive the ID rotation.
func (st *Store) Start(c *fiber.Ctx, user string) (*Session, error) {
	ctx := c.UserContext()

	var pending []string
	if prev, err := st.Get(c); err == nil && prev != nil {
		pending, _ = st.rdb.LRange(ctx, flashKey(prev.ID), 0, -1).Result()
		st.rdb.Del(ctx, sessionKey(prev.ID), flashKey(prev.ID))
	}

	sess := &Session{ID: uuid.NewString(), User: user, LoggedIn: user != ""}
	key := sessionKey(sess.ID)

	pipe := st.rdb.TxPipeline()
	pipe.HSet(ctx, key, "user", sess.User, "logged_in", fmt.Sprintf("%t", sess.LoggedIn))
	pipe.Expire(ctx, key, st.ttl)
	if len(pending) > 0 {
		pipe.RPush(ctx, flashKey(sess.ID), toAnySlice(pending)...)
		pipe.Expire(ctx, flashKey(sess.ID), st.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("session start: %w", err)
	}

	signed, err := st.signCookie(sess.ID)
	if err != nil {
		return nil, err
	}
	st.setCookie(c, signed)
	c.Locals(localsKey, sess)

	observability.SessionOperations.WithLabelValues("start").Inc()
	return sess, nil
}

// Destroy removes the session from Redis and expires the cookie. Destroying
// an absent session is a no-op.
func (st *Store) Destroy(c *fiber.Ctx) error {
	cookie := c.Cookies(CookieName)
	if cookie != "" {
		if id, ok := st.verifyCookie(cookie); ok {
			if err := st.rdb.Del(c.UserContext(), sessionKey(id), flashKey(id)).Err(); err != nil {
				return fmt.Errorf("session destroy: %w", err)
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Locals(localsKey, (*Session)(nil))

	observability.SessionOperations.WithLabelValues("destroy").Inc()
	return nil
}

// Flash queues a message for the next page load. An anonymous visitor gets a
// session created on demand, the same way Flask keeps flashes for users who
// are not logged in.
func (st *Store) Flash(c *fiber.Ctx, message string) error {
	sess, err := st.Get(c)
	if err != nil {
		return err
	}
	if sess == nil {
		sess, err = st.Start(c, "")
		if err != nil {
			return err
		}
	}

	ctx := c.UserContext()
	pipe := st.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(sess.ID), message)
	pipe.Expire(ctx, flashKey(sess.ID), st.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session flash: %w", err)
	}

	observability.SessionOperations.WithLabelValues("flash").Inc()
	return nil
}

// PopFlashes returns and clears all queued flash messages. Each message is
// delivered exactly once.
func (st *Store) PopFlashes(c *fiber.Ctx) ([]string, error) {
	sess, err := st.Get(c)
	if err != nil || sess == nil {
		return []string{}, err
	}

	ctx := c.UserContext()
	pipe := st.rdb.TxPipeline()
	rangeCmd := pipe.LRange(ctx, flashKey(sess.ID), 0, -1)
	pipe.Del(ctx, flashKey(sess.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("session pop flashes: %w", err)
	}

	messages := rangeCmd.Val()
	if messages == nil {
		messages = []string{}
	}
	return messages, nil
}

func (st *Store) signCookie(id string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": time.Now().Add(st.ttl).Unix(),
	})
	signed, err := token.SignedString(st.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

func (st *Store) verifyCookie(value string) (string, bool) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return st.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	id, ok := claims["sid"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func (st *Store) setCookie(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    value,
		Expires:  time.Now().Add(st.ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
