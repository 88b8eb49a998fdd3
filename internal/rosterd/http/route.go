package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/gate"
	"github.com/ysy950803/chatroster/internal/roster"
)

func (s *Service) initRouter() {
	s.initBaseRouter()
	s.initAPIRouter()
	s.initMCPRouter()
}

func (s *Service) initBaseRouter() {
	s.router.GET("/health", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/login", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "login required"})
	})
	s.router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func (s *Service) initAPIRouter() {
	api := s.router.Group("/api/v1")
	if s.gate != nil {
		api.Use(gate.Middleware(s.gate))
	}
	{
		api.GET("/setting", s.handleGetSetting)
		api.POST("/setting", s.handleUpdateSetting)

		api.GET("/chatrooms", s.handleChatRooms)
		api.POST("/chatrooms/refresh", s.handleRefresh)
		api.GET("/chatrooms/:name/members", s.handleMembers)
		api.POST("/chatrooms/:name/members/resolve", s.handleResolveMembers)
	}
}

func (s *Service) initMCPRouter() {
	mcp := s.router.Group("")
	if s.gate != nil {
		mcp.Use(gate.APIMiddleware(s.gate))
	}
	mcp.Any("/mcp", func(c *gin.Context) { s.mcpStreamableServer.ServeHTTP(c.Writer, c.Request) })
	mcp.Any("/sse", func(c *gin.Context) { s.mcpSSEServer.ServeHTTP(c.Writer, c.Request) })
	mcp.Any("/message", func(c *gin.Context) { s.mcpSSEServer.ServeHTTP(c.Writer, c.Request) })
}

type chatRoomQuery struct {
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// view runs one query on its own Table so concurrent callers never share
// search state.
func (s *Service) view(q chatRoomQuery) roster.View {
	t := roster.NewTable(s.roster.Store())
	if q.PageSize <= 0 {
		q.PageSize = s.conf.GetPageSize()
	}
	t.SetPageSize(q.PageSize)
	t.SetKeyword(strings.TrimSpace(q.Keyword))
	if q.Page > 0 {
		t.SetPageIndex(q.Page)
	}
	return t.Snapshot()
}

// GET /api/v1/chatrooms?keyword=&page=&page_size=
func (s *Service) handleChatRooms(c *gin.Context) {
	var q chatRoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		errors.Err(c, errors.InvalidArg("query"))
		return
	}
	c.JSON(http.StatusOK, s.view(q))
}

// POST /api/v1/chatrooms/refresh[?wait=1]
func (s *Service) handleRefresh(c *gin.Context) {
	if c.Query("wait") == "1" || c.Query("wait") == "true" {
		if err := s.roster.Refresh(c.Request.Context()); err != nil {
			errors.Err(c, err)
			return
		}
		store := s.roster.Store()
		c.JSON(http.StatusOK, gin.H{
			"version": store.Version(),
			"total":   len(store.Contacts()),
		})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.roster.Refresh(s.ctx); err != nil && s.ctx.Err() == nil {
			log.Warn().Err(err).Msg("background refresh failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// POST /api/v1/chatrooms/:name/members/resolve?page_size=
func (s *Service) handleResolveMembers(c *gin.Context) {
	name := c.Param("name")
	if !strings.Contains(name, "@chatroom") {
		errors.Err(c, errors.InvalidArg("name"))
		return
	}

	q := struct {
		PageSize int `form:"page_size"`
	}{}
	if err := c.ShouldBindQuery(&q); err != nil {
		errors.Err(c, errors.InvalidArg("page_size"))
		return
	}
	if q.PageSize <= 0 {
		q.PageSize = s.conf.GetPageSize()
	}

	e, err := s.roster.Expansions().Expand(c.Request.Context(), name, q.PageSize)
	if err != nil {
		errors.Err(c, err)
		return
	}
	st := e.Status()
	c.JSON(http.StatusAccepted, gin.H{
		"run":     st.Run,
		"room":    st.Room,
		"total":   st.Total,
		"pending": st.Pending,
	})
}

// GET /api/v1/chatrooms/:name/members
func (s *Service) handleMembers(c *gin.Context) {
	e, ok := s.roster.Expansions().Get(c.Param("name"))
	if !ok {
		errors.Err(c, errors.ErrChatRoomNotFound)
		return
	}
	c.JSON(http.StatusOK, e.Status())
}
