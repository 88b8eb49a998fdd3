package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ysy950803/chatroster/internal/rosterd/conf"
)

type settingRequest struct {
	PacingDelayMS  *int    `json:"pacing_delay_ms"`
	WindowCap      *int    `json:"window_cap"`
	FailurePolicy  *string `json:"failure_policy"`
	MaxRetries     *int    `json:"max_retries"`
	RetryBackoffMS *int    `json:"retry_backoff_ms"`
}

type settingResponse struct {
	HTTPAddr     string              `json:"http_addr"`
	PageSize     int                 `json:"page_size"`
	RequireLogin bool                `json:"require_login"`
	Resolver     conf.ResolverConfig `json:"resolver"`
}

func (s *Service) handleGetSetting(c *gin.Context) {
	c.JSON(http.StatusOK, s.buildSettingResponse())
}

// POST /api/v1/setting updates the resolver section. New values apply to the
// next resolver run.
func (s *Service) handleUpdateSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "detail": err.Error()})
		return
	}

	cfg := s.conf.GetResolver()
	if req.PacingDelayMS != nil {
		cfg.PacingDelayMS = *req.PacingDelayMS
	}
	if req.WindowCap != nil {
		cfg.WindowCap = *req.WindowCap
	}
	if req.FailurePolicy != nil {
		cfg.FailurePolicy = strings.TrimSpace(*req.FailurePolicy)
	}
	if req.MaxRetries != nil {
		cfg.MaxRetries = *req.MaxRetries
	}
	if req.RetryBackoffMS != nil {
		cfg.RetryBackoffMS = *req.RetryBackoffMS
	}

	if err := s.conf.SetResolver(cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.buildSettingResponse())
}

func (s *Service) buildSettingResponse() settingResponse {
	return settingResponse{
		HTTPAddr:     s.conf.GetHTTPAddr(),
		PageSize:     s.conf.GetPageSize(),
		RequireLogin: s.gate != nil,
		Resolver:     s.conf.GetResolver(),
	}
}
