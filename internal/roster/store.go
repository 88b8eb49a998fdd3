package roster

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

// ContactSource fetches the full contact collection.
type ContactSource interface {
	FetchContacts(ctx context.Context) ([]*model.Contact, error)
}

type rosterSnapshot struct {
	contacts []*model.Contact
	index    map[string]*model.Contact
	version  uint64
	digest   uint64
	loadedAt time.Time
}

// Store holds the unfiltered roster. Loads replace the collection wholesale,
// so readers see either the old collection or the new one.
type Store struct {
	src   ContactSource
	data  atomic.Pointer[rosterSnapshot]
	group singleflight.Group
}

func NewStore(src ContactSource) *Store {
	s := &Store{src: src}
	s.data.Store(&rosterSnapshot{
		contacts: []*model.Contact{},
		index:    map[string]*model.Contact{},
	})
	return s
}

// Load fetches the roster once and swaps it in. A failed load keeps the
// previous collection. Concurrent callers share a single fetch.
func (s *Store) Load(ctx context.Context) error {
	_, err, shared := s.group.Do("load", func() (interface{}, error) {
		return nil, s.load(ctx)
	})
	if shared {
		log.Debug().Msg("roster load shared with in-flight request")
	}
	return err
}

func (s *Store) load(ctx context.Context) error {
	contacts, err := s.src.FetchContacts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load roster failed, keeping previous contacts")
		return errors.Wrap(err, "fetch contacts failed", http.StatusBadGateway)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}

	prev := s.data.Load()
	next := &rosterSnapshot{
		contacts: contacts,
		index:    make(map[string]*model.Contact, len(contacts)),
		version:  prev.version + 1,
		digest:   digest(contacts),
		loadedAt: time.Now(),
	}
	for _, c := range contacts {
		if c != nil {
			next.index[c.UserName] = c
		}
	}
	s.data.Store(next)

	if prev.version > 0 && prev.digest == next.digest {
		log.Debug().Int("contacts", len(contacts)).Msg("roster reloaded, contents unchanged")
	} else {
		log.Info().Int("contacts", len(contacts)).Uint64("version", next.version).Msg("roster loaded")
	}
	return nil
}

func (s *Store) Contacts() []*model.Contact {
	return s.data.Load().contacts
}

// Version increases with every successful load.
func (s *Store) Version() uint64 {
	return s.data.Load().version
}

func (s *Store) LoadedAt() time.Time {
	return s.data.Load().loadedAt
}

func (s *Store) Lookup(userName string) (*model.Contact, bool) {
	c, ok := s.data.Load().index[userName]
	return c, ok
}

func (s *Store) snapshot() ([]*model.Contact, uint64) {
	d := s.data.Load()
	return d.contacts, d.version
}

func digest(contacts []*model.Contact) uint64 {
	h := xxhash.New()
	for _, c := range contacts {
		if c == nil {
			continue
		}
		for _, f := range []string{c.UserName, c.NickName, c.Remark, c.Alias} {
			io.WriteString(h, f)
			h.Write([]byte{0})
		}
		if c.IsFriend {
			h.Write([]byte{1})
		}
	}
	return h.Sum64()
}
