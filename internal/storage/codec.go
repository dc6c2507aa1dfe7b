package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// Names of the persisted documents, one per collection.
const (
	DocUsers         = "users.json"
	DocAds           = "ads.json"
	DocFavorites     = "favorites.json"
	DocSubscriptions = "subscriptions.json"
	DocPriceOffers   = "price_offers.json"
	DocState         = "state.json"
)

// Documents lists every document name in write order.
var Documents = []string{DocUsers, DocAds, DocFavorites, DocSubscriptions, DocPriceOffers, DocState}

// EncodeSnapshot renders snap as indented JSON documents keyed by name.
// Collections are keyed by stringified numeric id.
func EncodeSnapshot(snap *Snapshot) (map[string][]byte, error) {
	values := map[string]any{
		DocUsers:         snap.Users,
		DocAds:           snap.Ads,
		DocFavorites:     snap.Favorites,
		DocSubscriptions: snap.Subscriptions,
		DocPriceOffers:   snap.PriceOffers,
		DocState:         snap.State,
	}
	docs := make(map[string][]byte, len(values))
	for _, name := range Documents {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(values[name]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		docs[name] = buf.Bytes()
	}
	return docs, nil
}

// DecodeSnapshot rebuilds a snapshot from documents keyed by name. Missing
// documents leave their collection empty. A document that fails to decode is
// skipped and its error joined into the returned error; the snapshot is
// always non-nil.
func DecodeSnapshot(docs map[string][]byte) (*Snapshot, error) {
	snap := NewSnapshot()
	var errs error

	decode := func(name string, dst any) bool {
		raw, ok := docs[name]
		if !ok || len(bytes.TrimSpace(raw)) == 0 {
			return false
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("decode %s: %w", name, err))
			return false
		}
		return true
	}

	var users map[int64]User
	if decode(DocUsers, &users) && users != nil {
		snap.Users = users
	}
	var ads map[int64]Ad
	if decode(DocAds, &ads) && ads != nil {
		snap.Ads = ads
	}
	var favorites map[int64][]int64
	if decode(DocFavorites, &favorites) && favorites != nil {
		snap.Favorites = favorites
	}
	var subs map[int64][]Subscription
	if decode(DocSubscriptions, &subs) && subs != nil {
		snap.Subscriptions = subs
	}
	var offers map[int64][]PriceOffer
	if decode(DocPriceOffers, &offers) && offers != nil {
		snap.PriceOffers = offers
	}
	state := snap.State
	if decode(DocState, &state) {
		snap.State = state
	}
	return snap, errs
}
