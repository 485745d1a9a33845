package pubsub

import (
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const valueLogGCInterval = 30 * time.Minute

// cursor is the sequence number of the last event log entry processed for a
// subscription. It's stored under the subscription id.
type cursor struct {
	SubscriptionID string
	Seq            uint64
}

// store keeps subscriptions and their cursors in a badger db on its own,
// separated from the ledger store.
type store struct {
	db *badgerhold.Store
}

func newStore(baseDbDir string, logger badger.Logger) (*store, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "pubsub")
	}

	db, err := createDb(dbDir, logger)
	if err != nil {
		return nil, err
	}
	return &store{db}, nil
}

func (s *store) Cursor(subID string) (uint64, error) {
	var c cursor
	if err := s.db.Get(subID, &c); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return c.Seq, nil
}

func (s *store) UpdateCursor(subID string, seq uint64) error {
	return s.db.Badger().Update(func(tx *badger.Txn) error {
		var sub Subscription
		if err := s.db.TxGet(tx, subID, &sub); err != nil {
			if err == badgerhold.ErrNotFound {
				return nil
			}
			return err
		}

		var c cursor
		if err := s.db.TxGet(tx, subID, &c); err != nil &&
			err != badgerhold.ErrNotFound {
			return err
		}
		if seq <= c.Seq {
			return nil
		}
		return s.db.TxUpsert(tx, subID, cursor{subID, seq})
	})
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) getSubscription(id string) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Get(id, &sub); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// addSubscription stores the subscription together with its cursor.
func (s *store) addSubscription(sub Subscription, afterSeq uint64) error {
	return s.db.Badger().Update(func(tx *badger.Txn) error {
		if err := s.db.TxInsert(tx, sub.ID, sub); err != nil {
			return err
		}
		return s.db.TxUpsert(tx, sub.ID, cursor{sub.ID, afterSeq})
	})
}

// removeSubscription deletes the subscription and its cursor.
func (s *store) removeSubscription(id string) error {
	return s.db.Badger().Update(func(tx *badger.Txn) error {
		if err := s.db.TxDelete(tx, id, Subscription{}); err != nil {
			return err
		}
		if err := s.db.TxDelete(tx, id, cursor{}); err != nil &&
			err != badgerhold.ErrNotFound {
			return err
		}
		return nil
	})
}

// findSubscriptions returns the subscriptions for the given topic, or all of
// them if the topic is unspecified.
func (s *store) findSubscriptions(topic string) ([]Subscription, error) {
	var query *badgerhold.Query
	if len(topic) > 0 {
		query = badgerhold.Where("Topic").Eq(topic)
	}

	var subs []Subscription
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(valueLogGCInterval)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
