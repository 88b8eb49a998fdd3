package roster

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

// RoomMembers lists the raw member ids of a chatroom.
type RoomMembers interface {
	ChatRoomMembers(ctx context.Context, name string) ([]string, error)
}

// Expansion is the member list of one expanded chatroom and the state of its
// latest resolver run.
type Expansion struct {
	Room string
	List *MemberList

	mu         sync.Mutex
	running    bool
	run        string
	windows    int
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

type ExpansionStatus struct {
	Room       string              `json:"room"`
	Run        string              `json:"run,omitempty"`
	Resolving  bool                `json:"resolving"`
	Total      int                 `json:"total"`
	Pending    int                 `json:"pending"`
	Windows    int                 `json:"windows"`
	Error      string              `json:"error,omitempty"`
	StartedAt  time.Time           `json:"startedAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
	Members    []model.MemberEntry `json:"members"`
}

func (e *Expansion) Status() ExpansionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := e.List.Entries()
	pending := 0
	for _, entry := range entries {
		if entry.IsPlaceholder() {
			pending++
		}
	}
	st := ExpansionStatus{
		Room:      e.Room,
		Run:       e.run,
		Resolving: e.running,
		Total:     len(entries),
		Pending:   pending,
		Windows:   e.windows,
		StartedAt: e.startedAt,
		Members:   entries,
	}
	if e.err != nil {
		st.Error = e.err.Error()
	}
	if !e.finishedAt.IsZero() {
		finished := e.finishedAt
		st.FinishedAt = &finished
	}
	return st
}

func (e *Expansion) onWindow(rep WindowReport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rep.Err == nil {
		e.windows++
	}
}

// begin reports false when only the header placeholder is left, so a
// resolved room is not sent to the lookup again.
func (e *Expansion) begin(run string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.List.Resolving() {
		return false, errors.ErrResolveInProgress
	}
	if e.List.Pending() <= 1 {
		return false, nil
	}
	e.running = true
	e.run = run
	e.windows = 0
	e.err = nil
	e.startedAt = time.Now()
	e.finishedAt = time.Time{}
	return true, nil
}

func (e *Expansion) finish(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.err = err
	e.finishedAt = time.Now()
}

// Expansions owns the member lists of expanded chatrooms and runs their
// resolvers in the background until Close.
type Expansions struct {
	rooms   RoomMembers
	lookup  MemberLookup
	options func() ResolverConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	lists map[string]*Expansion
}

func NewExpansions(rooms RoomMembers, lookup MemberLookup, options func() ResolverConfig) *Expansions {
	if options == nil {
		options = DefaultResolverConfig
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Expansions{
		rooms:   rooms,
		lookup:  lookup,
		options: options,
		ctx:     ctx,
		cancel:  cancel,
		lists:   make(map[string]*Expansion),
	}
}

func (x *Expansions) Get(room string) (*Expansion, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.lists[room]
	return e, ok
}

// Expand builds the room's member list on first use, then starts a resolver
// run over it with the window derived from pageSize. It returns at once and
// the list fills in as windows land. Status().Run names the latest run. A room
// with nothing left to resolve starts no run.
func (x *Expansions) Expand(ctx context.Context, room string, pageSize int) (*Expansion, error) {
	e, err := x.expansion(ctx, room)
	if err != nil {
		return nil, err
	}
	run := uuid.NewString()
	started, err := e.begin(run)
	if err != nil || !started {
		return e, err
	}

	opts := x.options()
	opts.OnWindow = e.onWindow
	resolver := NewResolver(x.lookup, pageSize, opts)

	x.wg.Add(1)
	go func() {
		defer x.wg.Done()
		err := resolver.ResolveRun(x.ctx, e.List, run)
		if err != nil {
			log.Warn().Err(err).Str("room", room).Str("run", run).Msg("resolve chatroom members failed")
		}
		e.finish(err)
	}()
	return e, nil
}

func (x *Expansions) expansion(ctx context.Context, room string) (*Expansion, error) {
	if e, ok := x.Get(room); ok {
		return e, nil
	}

	ids, err := x.rooms.ChatRoomMembers(ctx, room)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.lists[room]; ok {
		return e, nil
	}
	e := &Expansion{Room: room, List: NewMemberListFromIDs(room, ids)}
	x.lists[room] = e
	return e, nil
}

// Close cancels running resolvers and waits for them to stop.
func (x *Expansions) Close() {
	x.cancel()
	x.wg.Wait()
}
