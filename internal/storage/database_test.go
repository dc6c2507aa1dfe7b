package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestDB(t *testing.T, opts ...Option) *Database {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	return New(context.Background(), opts...)
}

func TestCreateAd_GetAd(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	id := db.CreateAd(ctx, AdDraft{
		Title:       "Kia Rio",
		Model:       "Rio",
		Year:        2020,
		Price:       950000,
		Description: "one owner",
	})

	ad, ok := db.GetAd(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "Kia Rio", ad.Title)
	assert.Equal(t, "Rio", ad.Model)
	assert.Equal(t, 2020, ad.Year)
	assert.Equal(t, int64(950000), ad.Price)
	assert.Equal(t, "one owner", ad.Description)
	assert.Empty(t, ad.Photos)
	assert.Empty(t, ad.InspectionPhotos)
	assert.Empty(t, ad.ThicknessPhotos)
	assert.Equal(t, AuctionOff, ad.AuctionMode)
	assert.True(t, ad.AddedAt.Valid())

	_, ok = db.GetAd(ctx, id+1)
	assert.False(t, ok)
}

func TestCreateAd_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a := db.CreateAd(ctx, AdDraft{Title: "a"})
	b := db.CreateAd(ctx, AdDraft{Title: "b"})
	require.True(t, db.DeleteAd(ctx, b))
	c := db.CreateAd(ctx, AdDraft{Title: "c"})

	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
	assert.Equal(t, int64(3), c)
	assert.Equal(t, int64(3), db.LastAdID(ctx))
}

func TestGetAd_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := db.CreateAd(ctx, AdDraft{Title: "a", Photos: []string{"p1"}})

	ad, _ := db.GetAd(ctx, id)
	ad.Photos[0] = "changed"
	ad.Title = "changed"

	again, _ := db.GetAd(ctx, id)
	assert.Equal(t, "a", again.Title)
	assert.Equal(t, []string{"p1"}, again.Photos)
}

func TestListAds_NewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	db := newTestDB(t, WithClock(clock.Now))

	a := db.CreateAd(ctx, AdDraft{Title: "A"})
	clock.Advance(time.Minute)
	b := db.CreateAd(ctx, AdDraft{Title: "B"})

	ads := db.ListAds(ctx)
	require.Len(t, ads, 2)
	assert.Equal(t, b, ads[0].ID)
	assert.Equal(t, a, ads[1].ID)
}

func TestListAds_SameTimestampNewestIDFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	db := newTestDB(t, WithClock(clock.Now))

	a := db.CreateAd(ctx, AdDraft{Title: "A"})
	b := db.CreateAd(ctx, AdDraft{Title: "B"})
	c := db.CreateAd(ctx, AdDraft{Title: "C"})

	ads := db.ListAds(ctx)
	require.Len(t, ads, 3)
	assert.Equal(t, []int64{c, b, a}, []int64{ads[0].ID, ads[1].ID, ads[2].ID})
}

func TestAppendAdMedia(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := db.CreateAd(ctx, AdDraft{Title: "a"})

	require.NoError(t, db.AppendAdMedia(ctx, id, "p1", MediaPhoto))
	require.NoError(t, db.AppendAdMedia(ctx, id, "p2", MediaPhoto))
	require.NoError(t, db.AppendAdMedia(ctx, id, "i1", MediaInspection))
	require.NoError(t, db.AppendAdMedia(ctx, id, "t1", MediaThickness))

	ad, _ := db.GetAd(ctx, id)
	assert.Equal(t, []string{"p1", "p2"}, ad.Photos)
	assert.Equal(t, []string{"i1"}, ad.InspectionPhotos)
	assert.Equal(t, []string{"t1"}, ad.ThicknessPhotos)

	assert.ErrorIs(t, db.AppendAdMedia(ctx, 99, "x", MediaPhoto), ErrNotFound)
	assert.ErrorIs(t, db.AppendAdMedia(ctx, id, "x", MediaType("video")), ErrInvalidArgument)
}

func TestUpdateAd(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := db.CreateAd(ctx, AdDraft{Title: "a", Price: 100, Year: 2010})

	err := db.UpdateAd(ctx, id, map[string]any{
		"title":       "b",
		"price":       float64(250),
		"year":        2015,
		"description": "fresh",
		"photos":      []string{"ignored"},
		"unknown":     true,
	})
	require.NoError(t, err)

	ad, _ := db.GetAd(ctx, id)
	assert.Equal(t, "b", ad.Title)
	assert.Equal(t, int64(250), ad.Price)
	assert.Equal(t, 2015, ad.Year)
	assert.Equal(t, "fresh", ad.Description)
	assert.Empty(t, ad.Photos)
}

func TestUpdateAd_Errors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := db.CreateAd(ctx, AdDraft{Title: "a", Price: 100})

	assert.ErrorIs(t, db.UpdateAd(ctx, 42, map[string]any{"title": "x"}), ErrNotFound)

	err := db.UpdateAd(ctx, id, map[string]any{"title": "x", "price": "cheap"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ad, _ := db.GetAd(ctx, id)
	assert.Equal(t, "a", ad.Title, "a rejected update changes nothing")
	assert.Equal(t, int64(100), ad.Price)

	assert.ErrorIs(t, db.UpdateAd(ctx, id, map[string]any{"price": 1.5}), ErrInvalidArgument)
}

func TestSetAuctionMode(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := db.CreateAd(ctx, AdDraft{Title: "a"})

	require.NoError(t, db.SetAuctionMode(ctx, id, AuctionDescending))
	ad, _ := db.GetAd(ctx, id)
	assert.Equal(t, AuctionDescending, ad.AuctionMode)

	require.NoError(t, db.SetAuctionMode(ctx, id, AuctionOff))
	assert.ErrorIs(t, db.SetAuctionMode(ctx, 99, AuctionAscending), ErrNotFound)
	assert.ErrorIs(t, db.SetAuctionMode(ctx, id, AuctionMode("up")), ErrInvalidArgument)
}

func TestParseAuctionMode(t *testing.T) {
	tests := []struct {
		in   string
		want AuctionMode
		ok   bool
	}{
		{"", AuctionOff, true},
		{"off", AuctionOff, true},
		{"up", AuctionAscending, true},
		{"Ascending", AuctionAscending, true},
		{"down", AuctionDescending, true},
		{"sideways", AuctionMode("sideways"), false},
	}
	for _, tt := range tests {
		got, ok := ParseAuctionMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestDeleteAd_CascadesFavorites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	a := db.CreateAd(ctx, AdDraft{Title: "a"})
	b := db.CreateAd(ctx, AdDraft{Title: "b"})

	require.True(t, db.AddFavorite(ctx, 1, a))
	require.True(t, db.AddFavorite(ctx, 2, a))
	require.True(t, db.AddFavorite(ctx, 2, b))
	db.AddPriceOffer(ctx, a, 1, 100, OfferBuyer)

	require.True(t, db.DeleteAd(ctx, a))

	assert.False(t, db.IsFavorite(ctx, 1, a))
	assert.False(t, db.IsFavorite(ctx, 2, a))
	assert.True(t, db.IsFavorite(ctx, 2, b))
	assert.Len(t, db.ListPriceOffers(ctx, a), 1, "offers outlive their ad")
	assert.False(t, db.DeleteAd(ctx, a))
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	assert.False(t, db.AddFavorite(ctx, 1, 77))
	assert.Empty(t, db.ListFavoriteAds(ctx, 1))
	assert.NotNil(t, db.ListFavoriteAds(ctx, 1))

	a := db.CreateAd(ctx, AdDraft{Title: "a"})
	b := db.CreateAd(ctx, AdDraft{Title: "b"})
	db.AddFavorite(ctx, 1, b)
	db.AddFavorite(ctx, 1, a)
	db.AddFavorite(ctx, 1, a)

	favs := db.ListFavoriteAds(ctx, 1)
	require.Len(t, favs, 2)
	assert.Equal(t, a, favs[0].ID)
	assert.Equal(t, b, favs[1].ID)

	assert.True(t, db.RemoveFavorite(ctx, 1, a))
	assert.False(t, db.RemoveFavorite(ctx, 1, a))
	assert.False(t, db.IsFavorite(ctx, 1, a))
	assert.True(t, db.IsFavorite(ctx, 1, b))
}

func TestConsumePriceOffer_RemovesOneAtATime(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	const ad = int64(5)

	db.AddPriceOffer(ctx, ad, 1, 100, OfferBuyer)
	db.AddPriceOffer(ctx, ad, 1, 100, OfferBuyer)
	db.AddPriceOffer(ctx, ad, 1, 100, OfferCounter)

	got, ok := db.ConsumePriceOffer(ctx, ad, 1, 100, OfferBuyer)
	require.True(t, ok)
	assert.Equal(t, int64(100), got.Price)
	assert.Equal(t, OfferBuyer, got.Kind)
	assert.Len(t, db.ListPriceOffers(ctx, ad), 2)

	_, ok = db.ConsumePriceOffer(ctx, ad, 1, 100, OfferBuyer)
	require.True(t, ok)
	_, ok = db.ConsumePriceOffer(ctx, ad, 1, 100, OfferBuyer)
	assert.False(t, ok)

	left := db.ListPriceOffers(ctx, ad)
	require.Len(t, left, 1)
	assert.Equal(t, OfferCounter, left[0].Kind)
}

func TestConsumePriceOffer_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	db.AddPriceOffer(ctx, 1, 10, 100, OfferBuyer)
	db.AddPriceOffer(ctx, 1, 20, 200, OfferBuyer)
	db.AddPriceOffer(ctx, 1, 30, 300, OfferBuyer)

	_, ok := db.ConsumePriceOffer(ctx, 1, 20, 200, OfferBuyer)
	require.True(t, ok)

	left := db.ListPriceOffers(ctx, 1)
	require.Len(t, left, 2)
	assert.Equal(t, int64(10), left[0].UserID)
	assert.Equal(t, int64(30), left[1].UserID)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	maxPrice := int64(2_000_000)

	r1 := db.CreateSubscription(ctx, 1, SubscriptionFilter{Model: "Camry", PriceMax: &maxPrice})
	r2 := db.CreateSubscription(ctx, 2, SubscriptionFilter{})
	r3 := db.CreateSubscription(ctx, 1, SubscriptionFilter{Model: "Rio"})
	assert.Equal(t, []int64{1, 2, 3}, []int64{r1, r2, r3})

	maxPrice = 1
	subs := db.ListSubscriptions(ctx, 1)
	require.Len(t, subs, 2)
	assert.Equal(t, r1, subs[0].RowID)
	assert.Equal(t, int64(2_000_000), *subs[0].PriceMax, "filter is copied on insert")
	assert.Equal(t, r3, subs[1].RowID)

	all := db.ListAllSubscriptions(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{r1, r2, r3}, []int64{all[0].RowID, all[1].RowID, all[2].RowID})

	assert.False(t, db.DeleteSubscription(ctx, 99))
	assert.Len(t, db.ListAllSubscriptions(ctx), 3)

	assert.True(t, db.DeleteSubscription(ctx, r1))
	assert.False(t, db.DeleteSubscription(ctx, r1))
	assert.Len(t, db.ListSubscriptions(ctx, 1), 1)
	assert.Len(t, db.ListSubscriptions(ctx, 2), 1)

	r4 := db.CreateSubscription(ctx, 3, SubscriptionFilter{})
	assert.Equal(t, int64(4), r4)
}

func TestBotOpen(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	assert.True(t, db.IsBotOpen(ctx))
	db.SetBotOpen(ctx, false)
	assert.False(t, db.IsBotOpen(ctx))
}

func TestWithSampleAds(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithSampleAds(true))

	ads := db.ListAds(ctx)
	assert.Len(t, ads, len(sampleAds))
	assert.Equal(t, int64(len(sampleAds)), db.LastAdID(ctx))

	empty := newTestDB(t)
	assert.Empty(t, empty.ListAds(ctx))
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := db.CreateAd(ctx, AdDraft{Title: "a"})
			db.AddFavorite(ctx, int64(i), id)
			db.CreateSubscription(ctx, int64(i), SubscriptionFilter{})
			db.TouchLastActive(ctx, int64(i))
			_ = db.ListAds(ctx)
		}()
	}
	wg.Wait()

	stats := db.Stats(ctx)
	assert.Equal(t, 20, stats.Ads)
	assert.Equal(t, 20, stats.Users)
	assert.Equal(t, 20, stats.Subscriptions)
	assert.Equal(t, int64(20), db.LastAdID(ctx))
}
