package source

import (
	"context"
	"strings"
	"time"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/roster"
	"github.com/ysy950803/chatroster/internal/source/chatlogapi"
	"github.com/ysy950803/chatroster/internal/source/sqlite"
)

const (
	TypeAPI    = "api"
	TypeSQLite = "sqlite"
)

// Source is a backend that serves the roster, member lookups and login checks.
type Source interface {
	roster.ContactSource
	roster.MemberLookup

	// 群聊成员 id 列表
	ChatRoomMembers(ctx context.Context, name string) ([]string, error)

	CheckLogin(ctx context.Context) (int, error)

	Close() error
}

type Config struct {
	Type    string
	BaseURL string
	Token   string
	Timeout time.Duration
	DBPath  string
}

func New(cfg Config) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", TypeAPI:
		client, err := chatlogapi.New(chatlogapi.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Token:   cfg.Token,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case TypeSQLite:
		if cfg.DBPath == "" {
			return nil, errors.InvalidArg("db_path")
		}
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.ErrSourceUnsupported.WithCause(errors.InvalidArg(cfg.Type))
	}
}
