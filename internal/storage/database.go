package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"sales_bot/pkg/metrics"
)

// Database holds the canonical state of users, ads, favorites, price offers
// and subscriptions. It is safe for concurrent use by multiple goroutines.
//
// With a Persister attached, every mutation rewrites the whole state through
// it while the write lock is held, so snapshots reach the Persister in
// mutation order. Persistence failures are logged and counted but never
// returned: the in-memory state stays authoritative until the next
// successful save.
type Database struct {
	mu            sync.RWMutex
	users         map[int64]*User
	ads           map[int64]*Ad
	favorites     map[int64]map[int64]struct{}
	subscriptions map[int64][]Subscription
	offers        map[int64][]PriceOffer
	botOpen       bool
	nextAdID      int64
	nextSubID     int64

	persister Persister
	log       *zap.SugaredLogger
	now       func() time.Time
	seed      bool
}

// Option configures a Database during construction.
type Option func(*Database)

// WithPersister attaches durable storage. Without it the Database is purely
// in-memory.
func WithPersister(p Persister) Option {
	return func(d *Database) { d.persister = p }
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Database) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Database) {
		if now != nil {
			d.now = now
		}
	}
}

// WithSampleAds seeds demo listings when no ads exist after loading.
func WithSampleAds(enabled bool) Option {
	return func(d *Database) { d.seed = enabled }
}

// New builds a Database, loading the persisted state if a Persister is set.
// Load errors are logged and the Database continues with whatever was read.
func New(ctx context.Context, opts ...Option) *Database {
	d := &Database{
		users:         map[int64]*User{},
		ads:           map[int64]*Ad{},
		favorites:     map[int64]map[int64]struct{}{},
		subscriptions: map[int64][]Subscription{},
		offers:        map[int64][]PriceOffer{},
		botOpen:       true,
		nextAdID:      1,
		nextSubID:     1,
		log:           zap.NewNop().Sugar(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.persister != nil {
		snap, err := d.persister.Load(ctx)
		if err != nil {
			metrics.IncrementPersistenceError("load")
			d.log.Errorw("storage: load failed, continuing with partial state", "err", err)
		}
		if snap != nil {
			d.restoreLocked(snap)
		}
		d.log.Infow("storage: state loaded",
			"users", len(d.users),
			"ads", len(d.ads),
			"favorites", len(d.favorites),
			"subscriptions", len(d.subscriptions),
			"price_offers", len(d.offers))
	}

	if d.seed && len(d.ads) == 0 {
		n := d.seedSampleAdsLocked()
		d.log.Infow("storage: sample ads seeded", "count", n)
		d.commitLocked(ctx, "seed")
	}
	return d
}

// Close releases the Persister, if any.
func (d *Database) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log.Info("storage: closing")
	if d.persister == nil {
		return nil
	}
	return d.persister.Close()
}

// IsBotOpen reports whether the bot accepts new interactions.
func (d *Database) IsBotOpen(ctx context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.botOpen
}

// SetBotOpen opens or closes the bot.
func (d *Database) SetBotOpen(ctx context.Context, open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.botOpen = open
	d.commitLocked(ctx, "set_bot_open")
	d.log.Infow("storage: bot state changed", "open", open)
}

func (d *Database) stamp() Timestamp {
	return At(d.now())
}

// commitLocked records the operation and rewrites the persisted state.
func (d *Database) commitLocked(ctx context.Context, op string) {
	metrics.IncrementOperation(op)
	if d.persister == nil {
		return
	}
	start := time.Now()
	err := d.persister.Save(ctx, d.snapshotLocked())
	metrics.ObservePersist(time.Since(start))
	if err != nil {
		metrics.IncrementPersistenceError("save")
		d.log.Errorw("storage: save failed, keeping in-memory state", "op", op, "err", err)
	}
}

func (d *Database) snapshotLocked() *Snapshot {
	snap := NewSnapshot()
	for id, u := range d.users {
		snap.Users[id] = *u
	}
	for id, ad := range d.ads {
		snap.Ads[id] = ad.clone()
	}
	for userID, set := range d.favorites {
		snap.Favorites[userID] = sortedIDs(set)
	}
	for userID, subs := range d.subscriptions {
		out := make([]Subscription, len(subs))
		for i, s := range subs {
			out[i] = s.clone()
		}
		snap.Subscriptions[userID] = out
	}
	for adID, offers := range d.offers {
		snap.PriceOffers[adID] = append([]PriceOffer(nil), offers...)
	}
	snap.State = State{
		BotOpen:            d.botOpen,
		NextAdID:           d.nextAdID,
		NextSubscriptionID: d.nextSubID,
	}
	return snap
}

// restoreLocked replaces the state with snap. Id counters never move below
// the highest stored id, even when the persisted counters are stale.
func (d *Database) restoreLocked(snap *Snapshot) {
	for id, u := range snap.Users {
		u.ID = id
		d.users[id] = &u
	}

	maxAd := int64(0)
	for id, ad := range snap.Ads {
		ad = ad.clone()
		ad.ID = id
		if mode, ok := ParseAuctionMode(string(ad.AuctionMode)); ok {
			ad.AuctionMode = mode
		}
		d.ads[id] = &ad
		maxAd = max(maxAd, id)
	}

	// favorites may only point at loaded ads
	for userID, ids := range snap.Favorites {
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := d.ads[id]; ok {
				set[id] = struct{}{}
			}
		}
		d.favorites[userID] = set
	}

	maxSub := int64(0)
	for userID, subs := range snap.Subscriptions {
		out := make([]Subscription, len(subs))
		for i, s := range subs {
			out[i] = s.clone()
			maxSub = max(maxSub, s.RowID)
		}
		d.subscriptions[userID] = out
	}

	for adID, offers := range snap.PriceOffers {
		d.offers[adID] = append([]PriceOffer(nil), offers...)
	}

	d.botOpen = snap.State.BotOpen
	d.nextAdID = max(snap.State.NextAdID, maxAd+1, 1)
	d.nextSubID = max(snap.State.NextSubscriptionID, maxSub+1, 1)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
