package rosterd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/gate"
	"github.com/ysy950803/chatroster/internal/roster"
	"github.com/ysy950803/chatroster/internal/rosterd/conf"
	"github.com/ysy950803/chatroster/internal/rosterd/http"
	"github.com/ysy950803/chatroster/internal/source"
)

// WatchDebounce collapses bursts of contact.db writes into one refresh.
const WatchDebounce = 500 * time.Millisecond

// Manager wires the configured source into the roster store, the member
// expansions and the HTTP service.
type Manager struct {
	mu   sync.RWMutex
	conf *conf.Config

	src        source.Source
	store      *roster.Store
	table      *roster.Table
	refresher  *roster.Refresher
	expansions *roster.Expansions
	gate       *gate.Gate
	http       *http.Service
}

// Load reads the config at configPath and builds a Manager from it.
func Load(configPath string) (*Manager, error) {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func New(cfg *conf.Config) (*Manager, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	src, err := source.New(cfg.SourceConfig())
	if err != nil {
		return nil, err
	}

	m := &Manager{
		conf:  cfg,
		src:   src,
		store: roster.NewStore(src),
	}
	m.table = roster.NewTable(m.store)
	m.table.SetPageSize(cfg.Roster.PageSize)
	m.refresher = roster.NewRefresher(m.table, cfg.RefreshDelay(), nil)
	m.expansions = roster.NewExpansions(src, src, m.resolverOptions)
	if cfg.RequireLogin {
		m.gate = gate.New(src, nil)
	}
	m.http = http.NewService(m, m, m.gate)
	return m, nil
}

func (m *Manager) Store() *roster.Store {
	return m.store
}

// Table is the shared view reset by Refresh.
func (m *Manager) Table() *roster.Table {
	return m.table
}

func (m *Manager) Expansions() *roster.Expansions {
	return m.expansions
}

func (m *Manager) Service() *http.Service {
	return m.http
}

// Refresh resets the shared view and reloads the roster after the configured
// delay.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresher.Refresh(ctx, func(err error) {
		if err != nil {
			log.Warn().Err(err).Msg("roster refresh failed, keep previous roster")
			return
		}
		log.Debug().Uint64("version", m.store.Version()).Msg("roster refreshed")
	})
}

func (m *Manager) GetHTTPAddr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conf.HTTPAddr
}

// SetHTTPAddr accepts a bare port, a host:port or an http(s) URL. It takes
// effect on the next Serve.
func (m *Manager) SetHTTPAddr(text string) error {
	text = strings.TrimSpace(text)
	var addr string
	if _, err := strconv.Atoi(text); err == nil {
		addr = "127.0.0.1:" + text
	} else if strings.HasPrefix(text, "http://") {
		addr = strings.TrimPrefix(text, "http://")
	} else if strings.HasPrefix(text, "https://") {
		addr = strings.TrimPrefix(text, "https://")
	} else {
		addr = text
	}
	addr = strings.TrimSuffix(addr, "/")
	if addr == "" {
		return errors.InvalidArg("http_addr")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conf.HTTPAddr = addr
	return nil
}

func (m *Manager) GetPageSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conf.Roster.PageSize
}

func (m *Manager) GetResolver() conf.ResolverConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conf.Resolver
}

// SetResolver validates and applies a new resolver section. Runs already in
// flight keep their settings.
func (m *Manager) SetResolver(r conf.ResolverConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.conf
	next.Resolver = r
	if err := next.Normalize(); err != nil {
		return err
	}
	m.conf.Resolver = next.Resolver
	log.Info().Interface("resolver", m.conf.Resolver).Msg("resolver settings updated")
	return nil
}

func (m *Manager) resolverOptions() roster.ResolverConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conf.ResolverOptions()
}

// Serve loads the roster, serves HTTP and, for a watched sqlite source,
// refreshes on contact.db changes. It returns once ctx is done or a signal
// arrives.
func (m *Manager) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := m.store.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("initial roster load failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(m.http.ListenAndServe)

	if m.conf.Source.Type == source.TypeSQLite && m.conf.Source.Watch {
		g.Go(func() error {
			return source.Watch(gctx, m.conf.Source.DBPath, WatchDebounce, func(event fsnotify.Event) {
				log.Info().Str("file", event.Name).Str("op", event.Op.String()).Msg("contact database changed")
				if err := m.Refresh(gctx); err != nil && gctx.Err() == nil {
					log.Debug().Err(err).Msg("refresh after change failed")
				}
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return m.http.Stop()
	})

	err := g.Wait()
	m.Close()
	log.Info().Msg("Shutdown complete")
	return err
}

// List loads the roster and returns one page of the shared view.
func (m *Manager) List(ctx context.Context, keyword string, page, pageSize int) (roster.View, error) {
	if err := m.store.Load(ctx); err != nil {
		return roster.View{}, err
	}
	if pageSize > 0 {
		m.table.SetPageSize(pageSize)
	}
	m.table.SetKeyword(keyword)
	if page > 0 {
		m.table.SetPageIndex(page)
	}
	return m.table.Snapshot(), nil
}

// Members resolves the member list of room on the calling goroutine. The list
// is returned even when resolution stops early.
func (m *Manager) Members(ctx context.Context, room string, pageSize int, onWindow func(roster.WindowReport)) (*roster.MemberList, error) {
	ids, err := m.src.ChatRoomMembers(ctx, room)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = m.GetPageSize()
	}

	list := roster.NewMemberListFromIDs(room, ids)
	opts := m.resolverOptions()
	opts.OnWindow = onWindow
	err = roster.NewResolver(m.src, pageSize, opts).Resolve(ctx, list)
	return list, err
}

func (m *Manager) Close() error {
	m.expansions.Close()
	return m.src.Close()
}
