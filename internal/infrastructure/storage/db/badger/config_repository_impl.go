package dbbadger

import (
	"context"

	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	initializedKey     = "initialized"
	adminKey           = "admin"
	valueAssetKey      = "value_asset"
	feeBpsKey          = "fee_bps"
	tradeCounterKey    = "trade_counter"
	accumulatedFeesKey = "accumulated_fees"
	feeWithdrawalsKey  = "fee_withdrawals"
	eventSeqKey        = "event_seq"
)

// configEntry is a single scalar of the escrow config, either textual or
// numeric.
type configEntry struct {
	Key    string
	Text   string
	Number uint64
}

type configRepositoryImpl struct {
	store *badgerhold.Store
}

func NewConfigRepositoryImpl(store *badgerhold.Store) domain.ConfigRepository {
	return configRepositoryImpl{store}
}

func (r configRepositoryImpl) IsInitialized(ctx context.Context) (bool, error) {
	entry, err := getEntry(ctx, r.store, initializedKey)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (r configRepositoryImpl) InitConfig(
	ctx context.Context, cfg domain.Config,
) error {
	initialized, err := r.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return domain.ErrAlreadyInitialized
	}

	entries := []configEntry{
		{Key: adminKey, Text: cfg.Admin},
		{Key: valueAssetKey, Text: cfg.ValueAsset},
		{Key: feeBpsKey, Number: uint64(cfg.FeeBps)},
		{Key: tradeCounterKey, Number: cfg.TradeCounter},
		{Key: accumulatedFeesKey, Number: cfg.AccumulatedFees},
		{Key: feeWithdrawalsKey, Number: cfg.FeeWithdrawals},
		{Key: initializedKey, Number: 1},
	}
	for _, entry := range entries {
		if err := upsertEntry(ctx, r.store, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r configRepositoryImpl) GetConfig(
	ctx context.Context,
) (*domain.Config, error) {
	initialized, err := r.IsInitialized(ctx)
	if err != nil {
		return nil, err
	}
	if !initialized {
		return nil, domain.ErrNotInitialized
	}

	keys := []string{
		adminKey, valueAssetKey, feeBpsKey, tradeCounterKey, accumulatedFeesKey,
		feeWithdrawalsKey,
	}
	entries := make(map[string]configEntry, len(keys))
	for _, key := range keys {
		entry, err := getEntry(ctx, r.store, key)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, domain.ErrNotInitialized
		}
		entries[key] = *entry
	}

	return &domain.Config{
		Admin:           entries[adminKey].Text,
		ValueAsset:      entries[valueAssetKey].Text,
		FeeBps:          uint32(entries[feeBpsKey].Number),
		TradeCounter:    entries[tradeCounterKey].Number,
		AccumulatedFees: entries[accumulatedFeesKey].Number,
		FeeWithdrawals:  entries[feeWithdrawalsKey].Number,
	}, nil
}

func (r configRepositoryImpl) UpdateConfig(
	ctx context.Context,
	updateFn func(c *domain.Config) (*domain.Config, error),
) error {
	cfg, err := r.GetConfig(ctx)
	if err != nil {
		return err
	}
	admin, valueAsset := cfg.Admin, cfg.ValueAsset

	updatedCfg, err := updateFn(cfg)
	if err != nil {
		return err
	}
	if updatedCfg.Admin != admin || updatedCfg.ValueAsset != valueAsset {
		return ErrImmutableConfig
	}

	entries := []configEntry{
		{Key: feeBpsKey, Number: uint64(updatedCfg.FeeBps)},
		{Key: tradeCounterKey, Number: updatedCfg.TradeCounter},
		{Key: accumulatedFeesKey, Number: updatedCfg.AccumulatedFees},
		{Key: feeWithdrawalsKey, Number: updatedCfg.FeeWithdrawals},
	}
	for _, entry := range entries {
		if err := upsertEntry(ctx, r.store, entry); err != nil {
			return err
		}
	}
	return nil
}

func getEntry(
	ctx context.Context, store *badgerhold.Store, key string,
) (*configEntry, error) {
	var entry configEntry
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = store.TxGet(tx, key, &entry)
	} else {
		err = store.Get(key, &entry)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func upsertEntry(
	ctx context.Context, store *badgerhold.Store, entry configEntry,
) error {
	if tx := txFromContext(ctx); tx != nil {
		return store.TxUpsert(tx, entry.Key, entry)
	}
	return store.Upsert(entry.Key, entry)
}
