// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package offers

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/logging"
)

const keyPrefix = "offers:"

// Store caches offers per book in Badger. Every entry expires after the
// configured TTL. A book with no offers is cached as an empty list so that
// repeated misses do not reach the API.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenStore opens the offer cache at path. An empty path keeps the cache in
// memory.
func OpenStore(path string, ttl time.Duration) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logging.WithComponent("offer-cache")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open offer cache: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Get returns cached offers keyed by book id and the ids with no live entry.
func (s *Store) Get(bookIDs []string) (found map[string][]Offer, missing []string, err error) {
	found = make(map[string][]Offer, len(bookIDs))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range bookIDs {
			item, err := txn.Get([]byte(keyPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				missing = append(missing, id)
				continue
			}
			if err != nil {
				return err
			}
			var offers []Offer
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &offers)
			}); err != nil {
				return fmt.Errorf("decode offers for %s: %w", id, err)
			}
			found[id] = offers
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read offer cache: %w", err)
	}
	return found, missing, nil
}

// Put stores the offers of each listed book, replacing earlier entries.
func (s *Store) Put(byBook map[string][]Offer) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for id, offers := range byBook {
			if offers == nil {
				offers = []Offer{}
			}
			data, err := json.Marshal(offers)
			if err != nil {
				return err
			}
			entry := badger.NewEntry([]byte(keyPrefix+id), data).WithTTL(s.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write offer cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog. Info and
// debug output is demoted to debug.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
