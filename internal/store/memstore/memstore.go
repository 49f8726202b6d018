// Package memstore is an in-process implementation of store.Store backed by
// maps. Transactions are serialized and roll back by restoring a snapshot.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

type voteKey struct {
	targetType models.TargetType
	targetID   uuid.UUID
	voterID    uuid.UUID
}

type followKey struct {
	follower  uuid.UUID
	following uuid.UUID
}

type data struct {
	users         map[uuid.UUID]models.User
	posts         map[uuid.UUID]models.Post
	comments      map[uuid.UUID]models.Comment
	votes         map[voteKey]models.Vote
	follows       map[followKey]models.Follow
	notifications map[uuid.UUID]models.Notification
}

func newData() *data {
	return &data{
		users:         make(map[uuid.UUID]models.User),
		posts:         make(map[uuid.UUID]models.Post),
		comments:      make(map[uuid.UUID]models.Comment),
		votes:         make(map[voteKey]models.Vote),
		follows:       make(map[followKey]models.Follow),
		notifications: make(map[uuid.UUID]models.Notification),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.posts {
		c.posts[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.votes {
		c.votes[k] = v
	}
	for k, v := range d.follows {
		c.follows[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

type state struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    *data
}

// Store is a map-backed store.Store. Writes made outside a transaction wait
// for the running transaction so a rollback never discards them.
type Store struct {
	*state
	// tx marks the view handed to a transaction body, which already holds txMu.
	tx bool
}

// New creates an empty store.
func New() *Store {
	return &Store{state: &state{d: newData()}}
}

// lockWrite takes the locks a write needs and returns the release func.
func (s *Store) lockWrite() func() {
	if s.tx {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Users() store.UserRepository                 { return userRepo{s} }
func (s *Store) Posts() store.PostRepository                 { return postRepo{s} }
func (s *Store) Comments() store.CommentRepository           { return commentRepo{s} }
func (s *Store) Votes() store.VoteRepository                 { return voteRepo{s} }
func (s *Store) Follows() store.FollowRepository             { return followRepo{s} }
func (s *Store) Notifications() store.NotificationRepository { return notificationRepo{s} }

// Transaction runs fn while holding the transaction lock. Writes made by fn
// are discarded when it returns an error. A nested call joins the outer
// transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(&Store{state: s.state, tx: true}); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Health always succeeds.
func (s *Store) Health(ctx context.Context) error {
	return ctx.Err()
}

func now() time.Time {
	return time.Now().UTC()
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func window[T any](items []*T, page store.PageQuery) []*T {
	if page.Offset >= len(items) {
		return []*T{}
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return items[page.Offset:end]
}

func sortByScore(items []scored, by store.Sort) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if by == store.SortTop && a.score != b.score {
			return a.score > b.score
		}
		if !a.created.Equal(b.created) {
			return a.created.After(b.created)
		}
		return lessID(b.id, a.id)
	})
}

type scored struct {
	id      uuid.UUID
	score   int
	created time.Time
}
