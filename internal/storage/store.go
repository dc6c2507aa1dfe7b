package storage

import (
	"context"
	"time"
)

// Store is the data-access surface used by the bot's command layer.
// *Database is the only implementation; the interface exists so handlers and
// background jobs can be tested against fakes.
//
// Mutations are atomic per call. Reads return copies, never live references.
type Store interface {
	UpsertUser(ctx context.Context, id int64, displayName string, status UserStatus)
	GetUser(ctx context.Context, id int64) (User, bool)
	SetUserContact(ctx context.Context, id int64, name, phone, city string)
	SetUserStatus(ctx context.Context, id int64, status UserStatus)
	TouchLastActive(ctx context.Context, id int64)
	SetUserDisplayName(ctx context.Context, id int64, name string)
	SetUserReceiptAttachment(ctx context.Context, id int64, ref string)

	IsBotOpen(ctx context.Context) bool
	SetBotOpen(ctx context.Context, open bool)

	CreateAd(ctx context.Context, draft AdDraft) int64
	AppendAdMedia(ctx context.Context, adID int64, ref string, media MediaType) error
	UpdateAd(ctx context.Context, adID int64, fields map[string]any) error
	SetAuctionMode(ctx context.Context, adID int64, mode AuctionMode) error
	ListAds(ctx context.Context) []Ad
	GetAd(ctx context.Context, adID int64) (Ad, bool)
	DeleteAd(ctx context.Context, adID int64) bool

	AddPriceOffer(ctx context.Context, adID, userID, price int64, kind OfferKind)
	ConsumePriceOffer(ctx context.Context, adID, userID, price int64, kind OfferKind) (PriceOffer, bool)
	ListPriceOffers(ctx context.Context, adID int64) []PriceOffer

	IsFavorite(ctx context.Context, userID, adID int64) bool
	AddFavorite(ctx context.Context, userID, adID int64) bool
	RemoveFavorite(ctx context.Context, userID, adID int64) bool
	ListFavoriteAds(ctx context.Context, userID int64) []Ad

	CreateSubscription(ctx context.Context, userID int64, filter SubscriptionFilter) int64
	ListSubscriptions(ctx context.Context, userID int64) []Subscription
	ListAllSubscriptions(ctx context.Context) []Subscription
	DeleteSubscription(ctx context.Context, rowID int64) bool

	CountUsersAndAds(ctx context.Context) (users, ads int)
	CountActiveUsers(ctx context.Context, within time.Duration) int
	ListInactiveUsers(ctx context.Context, cutoff time.Time) []int64
	ListApprovedUsers(ctx context.Context) []int64
	ListUserContactsForExport(ctx context.Context) []Contact
	CountNewAds(ctx context.Context, cutoff time.Time) int
	ListUsersRegisteredBefore(ctx context.Context, cutoff time.Time) []User
	Stats(ctx context.Context) Stats

	Close(ctx context.Context) error
}

// Persister mirrors the Database state to durable storage.
//
// Load returns whatever could be read; a non-nil error alongside a non-nil
// snapshot means some documents were skipped. Missing data is not an error.
// Save rewrites the full state. Close frees resources; after Close the
// Persister should not be used.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// State holds the scalar part of a snapshot.
type State struct {
	BotOpen            bool  `json:"bot_open"`
	NextAdID           int64 `json:"next_ad_id"`
	NextSubscriptionID int64 `json:"next_subscription_id"`
}

// Snapshot is a full copy of the Database contents handed to a Persister.
type Snapshot struct {
	Users         map[int64]User
	Ads           map[int64]Ad
	Favorites     map[int64][]int64
	Subscriptions map[int64][]Subscription
	PriceOffers   map[int64][]PriceOffer
	State         State
}

// NewSnapshot returns an empty snapshot with the default state.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:         map[int64]User{},
		Ads:           map[int64]Ad{},
		Favorites:     map[int64][]int64{},
		Subscriptions: map[int64][]Subscription{},
		PriceOffers:   map[int64][]PriceOffer{},
		State:         State{BotOpen: true, NextAdID: 1, NextSubscriptionID: 1},
	}
}

var _ Store = (*Database)(nil)
