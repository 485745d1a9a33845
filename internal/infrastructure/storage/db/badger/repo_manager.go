package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	txCtxKey = "tx"

	valueLogGCInterval = 30 * time.Minute
)

type repoManager struct {
	store *badgerhold.Store
	// lock serializes read-write transactions.
	lock *sync.Mutex

	configRepository     domain.ConfigRepository
	tradeRepository      domain.TradeRepository
	arbitratorRepository domain.ArbitratorRepository
	eventRepository      domain.EventRepository
	nonceRepository      ports.NonceRepository
	balanceRepository    ports.BalanceRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. If the data dir is
// empty, the store is created in memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "escrow")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening escrow db: %w", err)
	}

	return &repoManager{
		store:                store,
		lock:                 &sync.Mutex{},
		configRepository:     NewConfigRepositoryImpl(store),
		tradeRepository:      NewTradeRepositoryImpl(store),
		arbitratorRepository: NewArbitratorRepositoryImpl(store),
		eventRepository:      NewEventRepositoryImpl(store),
		nonceRepository:      NewNonceRepositoryImpl(store),
		balanceRepository:    NewBalanceRepositoryImpl(store),
	}, nil
}

func (r *repoManager) ConfigRepository() domain.ConfigRepository {
	return r.configRepository
}

func (r *repoManager) TradeRepository() domain.TradeRepository {
	return r.tradeRepository
}

func (r *repoManager) ArbitratorRepository() domain.ArbitratorRepository {
	return r.arbitratorRepository
}

func (r *repoManager) EventRepository() domain.EventRepository {
	return r.eventRepository
}

func (r *repoManager) NonceRepository() ports.NonceRepository {
	return r.nonceRepository
}

func (r *repoManager) BalanceRepository() ports.BalanceRepository {
	return r.balanceRepository
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("error while closing escrow db")
	}
}

// RunTransaction implements the RepoManager interface. If the given context
// already carries a transaction, the handler joins it.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (res interface{}, err error) {
	if txFromContext(ctx) != nil {
		return handler(ctx)
	}

	if !readOnly {
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("recovered: %v", rec)
		}
	}()

	txCtx := context.WithValue(ctx, txCtxKey, tx)
	res, err = handler(txCtx)
	if err != nil {
		return nil, err
	}
	if readOnly {
		return res, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return res, nil
}

func txFromContext(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value(txCtxKey).(*badger.Txn); ok {
		return tx
	}
	return nil
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
