package gate

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
)

const (
	CodeLoggedIn     = 1
	DefaultLoginPath = "/login"
)

// Checker reports the login status code; CodeLoggedIn means logged in.
type Checker interface {
	CheckLogin(ctx context.Context) (int, error)
}

// Progress brackets a navigation, whatever its outcome.
type Progress interface {
	Start()
	Done()
}

// Tracker is a Progress that counts navigations in flight.
type Tracker struct {
	inFlight atomic.Int64
}

func (t *Tracker) Start() { t.inFlight.Add(1) }

func (t *Tracker) Done() { t.inFlight.Add(-1) }

func (t *Tracker) InFlight() int64 { return t.inFlight.Load() }

type Decision struct {
	Path    string
	Allowed bool
}

// Gate guards protected views behind a login check. A failed check is a
// redirect to the login view, never an error for the caller.
type Gate struct {
	checker   Checker
	progress  Progress
	loginPath string
}

func New(checker Checker, progress Progress) *Gate {
	if progress == nil {
		progress = &Tracker{}
	}
	return &Gate{
		checker:   checker,
		progress:  progress,
		loginPath: DefaultLoginPath,
	}
}

func (g *Gate) LoginPath() string {
	return g.loginPath
}

// Enter decides where a navigation to target ends up.
func (g *Gate) Enter(ctx context.Context, target string) Decision {
	g.progress.Start()
	defer g.progress.Done()
	return g.decide(ctx, target)
}

func (g *Gate) decide(ctx context.Context, target string) Decision {
	if target == g.loginPath {
		return Decision{Path: target, Allowed: true}
	}
	code, err := g.checker.CheckLogin(ctx)
	if err != nil {
		log.Warn().Err(err).Str("target", target).Msg("check login failed")
		return Decision{Path: g.loginPath}
	}
	if code != CodeLoggedIn {
		log.Debug().Int("code", code).Str("target", target).Msg("not logged in, redirect")
		return Decision{Path: g.loginPath}
	}
	return Decision{Path: target, Allowed: true}
}

// Middleware applies the gate to gin routes. API calls get a 401 with the
// redirect target, page navigations get a 302.
func Middleware(g *Gate) gin.HandlerFunc {
	return middleware(g, func(path string) bool { return strings.HasPrefix(path, "/api") })
}

// APIMiddleware always answers a failed check with the 401 JSON body, for
// machine endpoints outside /api such as MCP.
func APIMiddleware(g *Gate) gin.HandlerFunc {
	return middleware(g, func(string) bool { return true })
}

func middleware(g *Gate, isAPI func(path string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.progress.Start()
		defer g.progress.Done()

		path := c.Request.URL.Path
		d := g.decide(c.Request.Context(), path)
		if d.Allowed {
			c.Next()
			return
		}
		if isAPI(path) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    errors.ErrNotLoggedIn.Error(),
				"redirect": d.Path,
			})
			return
		}
		c.Redirect(http.StatusFound, d.Path)
		c.Abort()
	}
}
