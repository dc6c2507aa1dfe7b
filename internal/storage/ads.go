package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// CreateAd stores a new ad and returns its id. Ids are never reused.
func (d *Database) CreateAd(ctx context.Context, draft AdDraft) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.insertAdLocked(draft)
	d.commitLocked(ctx, "create_ad")
	d.log.Infow("storage: ad created", "ad_id", id, "title", draft.Title)
	return id
}

func (d *Database) insertAdLocked(draft AdDraft) int64 {
	id := d.nextAdID
	d.nextAdID++
	d.ads[id] = &Ad{
		ID:               id,
		Title:            draft.Title,
		Model:            draft.Model,
		Year:             draft.Year,
		Price:            draft.Price,
		Description:      draft.Description,
		Photos:           cloneStrings(draft.Photos),
		InspectionPhotos: cloneStrings(draft.InspectionPhotos),
		ThicknessPhotos:  cloneStrings(draft.ThicknessPhotos),
		AddedAt:          d.stamp(),
		AuctionMode:      AuctionOff,
	}
	return id
}

// AppendAdMedia appends an attachment reference to one of the ad's photo
// lists.
func (d *Database) AppendAdMedia(ctx context.Context, adID int64, ref string, media MediaType) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ad, ok := d.ads[adID]
	if !ok {
		return fmt.Errorf("ad %d: %w", adID, ErrNotFound)
	}
	switch media {
	case MediaPhoto:
		ad.Photos = append(ad.Photos, ref)
	case MediaInspection:
		ad.InspectionPhotos = append(ad.InspectionPhotos, ref)
	case MediaThickness:
		ad.ThicknessPhotos = append(ad.ThicknessPhotos, ref)
	default:
		return fmt.Errorf("media type %q: %w", media, ErrInvalidArgument)
	}
	d.commitLocked(ctx, "append_ad_media")
	d.log.Infow("storage: ad media appended", "ad_id", adID, "media", media, "ref", ref)
	return nil
}

// UpdateAd applies the given fields to an ad. Only title, model, year, price
// and description are editable; other names are ignored. A value of the
// wrong type fails the whole update before anything is changed.
func (d *Database) UpdateAd(ctx context.Context, adID int64, fields map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ad, ok := d.ads[adID]
	if !ok {
		return fmt.Errorf("ad %d: %w", adID, ErrNotFound)
	}

	next := *ad
	for name, value := range fields {
		var err error
		switch name {
		case "title":
			next.Title, err = asString(name, value)
		case "model":
			next.Model, err = asString(name, value)
		case "description":
			next.Description, err = asString(name, value)
		case "year":
			var year int64
			year, err = asInt(name, value)
			next.Year = int(year)
		case "price":
			next.Price, err = asInt(name, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}

	*ad = next
	d.commitLocked(ctx, "update_ad")
	d.log.Infow("storage: ad updated", "ad_id", adID, "fields", fields)
	return nil
}

// SetAuctionMode switches the ad's auction mode. Any mode may follow any
// other.
func (d *Database) SetAuctionMode(ctx context.Context, adID int64, mode AuctionMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ad, ok := d.ads[adID]
	if !ok {
		return fmt.Errorf("ad %d: %w", adID, ErrNotFound)
	}
	if !mode.Valid() {
		return fmt.Errorf("auction mode %q: %w", mode, ErrInvalidArgument)
	}
	ad.AuctionMode = mode
	d.commitLocked(ctx, "set_auction_mode")
	d.log.Infow("storage: auction mode set", "ad_id", adID, "mode", mode)
	return nil
}

// ListAds returns all ads, newest first. Ads sharing a timestamp are ordered
// by id, most recently created first.
func (d *Database) ListAds(ctx context.Context) []Ad {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Ad, 0, len(d.ads))
	for _, ad := range d.ads {
		out = append(out, ad.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].AddedAt.Time(), out[j].AddedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// GetAd returns a copy of the ad.
func (d *Database) GetAd(ctx context.Context, adID int64) (Ad, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ad, ok := d.ads[adID]
	if !ok {
		return Ad{}, false
	}
	return ad.clone(), true
}

// DeleteAd removes the ad and drops it from every user's favorites. Price
// offers recorded for the ad are left untouched.
func (d *Database) DeleteAd(ctx context.Context, adID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ads[adID]; !ok {
		return false
	}
	delete(d.ads, adID)
	for _, set := range d.favorites {
		delete(set, adID)
	}
	d.commitLocked(ctx, "delete_ad")
	d.log.Infow("storage: ad deleted", "ad_id", adID)
	return true
}

// AdsCreatedAfter returns ads with an id greater than afterID in id order.
// Ids grow with creation, so this lists ads created since afterID.
func (d *Database) AdsCreatedAfter(ctx context.Context, afterID int64) []Ad {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Ad
	for id, ad := range d.ads {
		if id > afterID {
			out = append(out, ad.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LastAdID returns the id most recently handed out, or 0 if none was.
func (d *Database) LastAdID(ctx context.Context) int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nextAdID - 1
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T: %w", field, v, ErrInvalidArgument)
	}
	return s, nil
}

func asInt(field string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("field %s: expected integer, got %T(%v): %w", field, v, v, ErrInvalidArgument)
}
