package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type eventRepositoryImpl struct {
	store *badgerhold.Store
}

func NewEventRepositoryImpl(store *badgerhold.Store) domain.EventRepository {
	return eventRepositoryImpl{store}
}

func (r eventRepositoryImpl) AddEvent(
	ctx context.Context, event domain.Event,
) (uint64, error) {
	seq, err := r.GetLatestSeq(ctx)
	if err != nil {
		return 0, err
	}
	seq++

	event.Seq = seq
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, seq, event)
	} else {
		err = r.store.Insert(seq, event)
	}
	if err != nil {
		return 0, err
	}

	if err := upsertEntry(
		ctx, r.store, configEntry{Key: eventSeqKey, Number: seq},
	); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r eventRepositoryImpl) GetEventsAfter(
	ctx context.Context, seq uint64, limit int,
) ([]domain.Event, error) {
	query := badgerhold.Where("Seq").Gt(seq)

	var events []domain.Event
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &events, query)
	} else {
		err = r.store.Find(&events, query)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Seq < events[j].Seq
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r eventRepositoryImpl) GetLatestSeq(ctx context.Context) (uint64, error) {
	entry, err := getEntry(ctx, r.store, eventSeqKey)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return entry.Number, nil
}
