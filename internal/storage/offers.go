package storage

import "context"

// AddPriceOffer appends an offer to the ad's offer list. The ad is not
// checked for existence, so offers may outlive their ad.
func (d *Database) AddPriceOffer(ctx context.Context, adID, userID, price int64, kind OfferKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.offers[adID] = append(d.offers[adID], PriceOffer{
		UserID:    userID,
		Price:     price,
		Kind:      kind,
		CreatedAt: d.stamp(),
	})
	d.commitLocked(ctx, "add_price_offer")
	d.log.Infow("storage: price offer added", "ad_id", adID, "user_id", userID, "price", price, "kind", kind)
}

// ConsumePriceOffer removes the oldest offer matching user, price and kind
// exactly and returns it. The boolean is false when nothing matched.
func (d *Database) ConsumePriceOffer(ctx context.Context, adID, userID, price int64, kind OfferKind) (PriceOffer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offers := d.offers[adID]
	for i, o := range offers {
		if o.UserID != userID || o.Price != price || o.Kind != kind {
			continue
		}
		d.offers[adID] = append(offers[:i:i], offers[i+1:]...)
		d.commitLocked(ctx, "consume_price_offer")
		d.log.Infow("storage: price offer consumed", "ad_id", adID, "user_id", userID, "price", price, "kind", kind)
		return o, true
	}
	d.log.Infow("storage: price offer not found", "ad_id", adID, "user_id", userID, "price", price, "kind", kind)
	return PriceOffer{}, false
}

// ListPriceOffers returns the ad's pending offers in insertion order.
func (d *Database) ListPriceOffers(ctx context.Context, adID int64) []PriceOffer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]PriceOffer{}, d.offers[adID]...)
}
