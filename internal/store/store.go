// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store holds the in-memory survey and vote collections. Every
// operation runs under one store-wide mutex, including the record write
// that follows a mutation.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"pollStore/internal/idgen"
	"pollStore/internal/poll"
	"pollStore/pkg/log"
	"pollStore/pkg/metrics"
)

// Persister writes the full record of an item.
type Persister interface {
	Save(kind poll.Kind, it *poll.Item) error
}

// Loader reads every record of a kind, oldest first.
type Loader interface {
	LoadAll(kind poll.Kind) ([]*poll.Item, error)
}

// RecordChecker is implemented by persisters that can tell whether a record
// name is already taken in durable storage, loaded or not.
type RecordChecker interface {
	Exists(kind poll.Kind, id string) bool
}

// Options configures a Store.
type Options struct {
	// StrictWrites makes a failed record write fail the operation and leave
	// the in-memory item unchanged. When false, write failures are logged and
	// the mutation stands.
	StrictWrites bool

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Store is the authoritative state of the server.
type Store struct {
	mu          sync.Mutex
	collections map[poll.Kind]*collection
	seq         uint64

	persister Persister
	strict    bool
	metrics   *metrics.Metrics
}

// New creates an empty store. persister may be nil for a memory-only store.
func New(persister Persister, opts Options) *Store {
	s := &Store{
		collections: make(map[poll.Kind]*collection, len(poll.Kinds)),
		persister:   persister,
		strict:      opts.StrictWrites,
		metrics:     opts.Metrics,
	}
	for _, kind := range poll.Kinds {
		s.collections[kind] = newCollection(kind)
		s.metrics.SetItems(kind.String(), 0)
	}
	return s
}

// Restore loads every record of both kinds. Items are inserted in the order
// the loader returns them, so the last one lists first. Records the loader
// skipped are reported in the returned error; the items it did return are
// kept either way.
func (s *Store) Restore(loader Loader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		loaded int
		errs   error
	)
	for _, kind := range poll.Kinds {
		items, err := loader.LoadAll(kind)
		errs = multierr.Append(errs, err)

		c := s.collections[kind]
		for _, it := range items {
			if c.exists(it.ID) {
				errs = multierr.Append(errs, fmt.Errorf("duplicate %s record %q", kind, it.ID))
				continue
			}
			s.seq++
			c.insert(it, s.seq)
			loaded++
		}
		s.metrics.SetItems(kind.String(), len(c.items))
		log.Info("Loaded records",
			log.Kind(kind.String()),
			log.Count(len(c.items)),
			log.Component("store"))
	}
	return loaded, errs
}

// Create adds a new active item and returns its id. Prompt and options are
// cut to their length limits; line breaks become spaces.
func (s *Store) Create(kind poll.Kind, prompt string, options []string) (string, error) {
	prompt = clean(prompt, poll.MaxPromptLen)
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", poll.ErrInvalidInput)
	}
	if len(options) < poll.MinOptions || len(options) > poll.MaxOptions {
		return "", fmt.Errorf("%w: %d options", poll.ErrInvalidInput, len(options))
	}
	opts := make([]string, len(options))
	for i, o := range options {
		opts[i] = clean(o, poll.MaxOptionLen)
		if opts[i] == "" {
			return "", fmt.Errorf("%w: empty option %d", poll.ErrInvalidInput, i+1)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(kind)
	if err != nil {
		return "", err
	}

	id := idgen.Assign(kind, prompt, s.taken(kind, c))
	it := poll.New(id, prompt, opts)
	if err := s.save(kind, it); err != nil && s.strict {
		return "", err
	}
	s.seq++
	c.insert(it, s.seq)
	s.metrics.SetItems(kind.String(), len(c.items))

	log.Debug("Created item",
		log.Kind(kind.String()),
		log.ItemID(id),
		log.Component("store"))
	return id, nil
}

// Get returns a copy of an item.
func (s *Store) Get(kind poll.Kind, id string) (*poll.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(kind, id)
	if err != nil {
		return nil, err
	}
	return e.item.Clone(), nil
}

// List summarizes every item of a kind, most recently created first.
func (s *Store) List(kind poll.Kind) ([]poll.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	out := make([]poll.Summary, 0, len(c.items))
	c.newestFirst(func(it *poll.Item) bool {
		out = append(out, it.Summary())
		return true
	})
	return out, nil
}

// Respond records one response. The checks run in this order: the item
// exists, it is active, username has not answered yet, the respondent cap
// is not reached. Selections are 1-based; invalid ones are dropped.
func (s *Store) Respond(kind poll.Kind, id, username string, selections []int) error {
	username = clean(username, poll.MaxUsernameLen)
	if username == "" {
		return fmt.Errorf("%w: empty username", poll.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(kind, id)
	if err != nil {
		return err
	}
	switch {
	case e.item.Status == poll.StatusClosed:
		return poll.ErrClosed
	case e.item.HasResponded(username):
		return poll.ErrAlreadyResponded
	case len(e.item.Respondents) >= poll.MaxRespondents:
		return poll.ErrFull
	}

	next := e.item.Clone()
	next.Record(kind, username, selections)
	if err := s.commit(kind, e, next); err != nil {
		return err
	}
	s.metrics.RecordResponse(kind.String())

	log.Debug("Recorded response",
		log.Kind(kind.String()),
		log.ItemID(id),
		log.Username(username),
		log.Component("store"))
	return nil
}

// Close marks an item closed. Closing a closed item succeeds.
func (s *Store) Close(kind poll.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(kind, id)
	if err != nil {
		return err
	}
	next := e.item.Clone()
	next.Status = poll.StatusClosed
	return s.commit(kind, e, next)
}

// Result returns the tally snapshot of an item.
func (s *Store) Result(kind poll.Kind, id string) (poll.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(kind, id)
	if err != nil {
		return poll.Result{}, err
	}
	return e.item.Result(), nil
}

// Count returns the number of items of a kind.
func (s *Store) Count(kind poll.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[kind]; ok {
		return len(c.items)
	}
	return 0
}

func (s *Store) collection(kind poll.Kind) (*collection, error) {
	c, ok := s.collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %s", poll.ErrInvalidInput, kind)
	}
	return c, nil
}

// taken reports ids used in memory or, when the persister can tell, on disk.
// A record skipped at load must not be overwritten by a new item.
func (s *Store) taken(kind poll.Kind, c *collection) func(id string) bool {
	rc, ok := s.persister.(RecordChecker)
	if !ok {
		return c.exists
	}
	return func(id string) bool {
		return c.exists(id) || rc.Exists(kind, id)
	}
}

func (s *Store) lookup(kind poll.Kind, id string) (*entry, error) {
	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	e, ok := c.items[id]
	if !ok {
		return nil, poll.ErrNotFound
	}
	return e, nil
}

// commit writes next and swaps it in. In strict mode a failed write keeps
// the current item.
func (s *Store) commit(kind poll.Kind, e *entry, next *poll.Item) error {
	if err := s.save(kind, next); err != nil && s.strict {
		return err
	}
	e.item = next
	return nil
}

func (s *Store) save(kind poll.Kind, it *poll.Item) error {
	if s.persister == nil {
		return nil
	}
	start := time.Now()
	err := s.persister.Save(kind, it)
	s.metrics.RecordPersistence(kind.String(), time.Since(start), err)
	if err != nil {
		log.Warn("Failed to persist item",
			log.Kind(kind.String()),
			log.ItemID(it.ID),
			log.Bool("strict", s.strict),
			log.Err(err),
			log.Component("store"))
		return fmt.Errorf("%w: %s %s: %v", poll.ErrDurability, kind, it.ID, err)
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// clean keeps a field on one record line and within max bytes.
func clean(s string, max int) string {
	return poll.Truncate(lineBreaks.Replace(s), max)
}
