package roster

import (
	"context"
	"sync"
	"time"

	"github.com/ysy950803/chatroster/internal/model"
)

type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type fakeSource struct {
	mu       sync.Mutex
	contacts []*model.Contact
	err      error
	calls    int
	block    chan struct{}
}

func (f *fakeSource) FetchContacts(ctx context.Context) ([]*model.Contact, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

func (f *fakeSource) set(contacts []*model.Contact, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts, f.err = contacts, err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func room(id, name string) *model.Contact {
	return &model.Contact{UserName: id + "@chatroom", NickName: name}
}

func person(id, name string) *model.Contact {
	return &model.Contact{UserName: id, NickName: name}
}
