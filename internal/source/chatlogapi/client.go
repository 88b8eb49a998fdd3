package chatlogapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

const (
	contactPath    = "/api/v1/contact"
	chatRoomPath   = "/api/v1/chatroom"
	membersPath    = "/api/v1/members"
	checkLoginPath = "/api/v1/login/check"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

// Client talks to a running chatlog HTTP service.
type Client struct {
	client  *resty.Client
	baseURL string
}

type contactsResp struct {
	Items []*model.Contact `json:"items"`
}

type chatRoomsResp struct {
	Items []*model.ChatRoom `json:"items"`
}

type membersReq struct {
	IDs []string `json:"ids"`
}

type membersResp struct {
	Items []*model.Member `json:"items"`
}

type checkLoginResp struct {
	Code int `json:"code"`
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.InvalidArg("base_url")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{client: client, baseURL: baseURL}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) FetchContacts(ctx context.Context) ([]*model.Contact, error) {
	var out contactsResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetResult(&out).
		Get(contactPath)
	if err := checkResponse(resp, err, http.MethodGet, contactPath); err != nil {
		return nil, errors.SourceFailed(err)
	}
	return out.Items, nil
}

// ResolveMembers looks up one window of member ids. The service answers in
// request order.
func (c *Client) ResolveMembers(ctx context.Context, ids []string) ([]*model.Member, error) {
	if len(ids) == 0 {
		return []*model.Member{}, nil
	}

	var out membersResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(membersReq{IDs: ids}).
		SetResult(&out).
		Post(membersPath)
	if err := checkResponse(resp, err, http.MethodPost, membersPath); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ChatRoomMembers returns the raw member ids of a chatroom.
func (c *Client) ChatRoomMembers(ctx context.Context, name string) ([]string, error) {
	var out chatRoomsResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"keyword": name, "format": "json"}).
		SetResult(&out).
		Get(chatRoomPath)
	if err := checkResponse(resp, err, http.MethodGet, chatRoomPath); err != nil {
		return nil, err
	}
	for _, room := range out.Items {
		if room != nil && room.Name == name {
			return room.UserNames(), nil
		}
	}
	return nil, errors.ErrChatRoomNotFound
}

// CheckLogin returns the service's login status code, 1 meaning logged in.
func (c *Client) CheckLogin(ctx context.Context) (int, error) {
	var out checkLoginResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(checkLoginPath)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return 0, nil
	}
	if resp.IsError() {
		return 0, errors.RequestFailed(http.MethodGet, checkLoginPath, resp.StatusCode())
	}
	return out.Code, nil
}

func (c *Client) Close() error {
	return nil
}

func checkResponse(resp *resty.Response, err error, method, path string) error {
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("chatlog request failed")
		return err
	}
	if resp.IsError() {
		return errors.RequestFailed(method, path, resp.StatusCode())
	}
	return nil
}
