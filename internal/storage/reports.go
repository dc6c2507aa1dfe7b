package storage

import (
	"context"
	"sort"
	"time"
)

// DefaultActiveWindow is the trailing window used by CountActiveUsers when
// none is given.
const DefaultActiveWindow = 7 * 24 * time.Hour

// Users whose relevant timestamp is missing or unparsable are left out of
// every time-based report below.

// CountUsersAndAds returns the number of users and ads.
func (d *Database) CountUsersAndAds(ctx context.Context) (users, ads int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users), len(d.ads)
}

// CountActiveUsers counts users active within the trailing window. A
// non-positive window means DefaultActiveWindow.
func (d *Database) CountActiveUsers(ctx context.Context, within time.Duration) int {
	if within <= 0 {
		within = DefaultActiveWindow
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	threshold := d.now().Add(-within)
	n := 0
	for _, u := range d.users {
		if u.LastActiveAt.Valid() && !u.LastActiveAt.Time().Before(threshold) {
			n++
		}
	}
	return n
}

// ListInactiveUsers returns ids of users last active at or before cutoff.
func (d *Database) ListInactiveUsers(ctx context.Context, cutoff time.Time) []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.userIDsLocked(func(u *User) bool {
		return u.LastActiveAt.Valid() && !u.LastActiveAt.Time().After(cutoff)
	})
}

// ListApprovedUsers returns ids of approved users.
func (d *Database) ListApprovedUsers(ctx context.Context) []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.userIDsLocked(func(u *User) bool { return u.Status == StatusApproved })
}

// ListUserContactsForExport returns contacts of users who filled in name,
// city and phone, ordered by user id.
func (d *Database) ListUserContactsForExport(ctx context.Context) []Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := d.userIDsLocked(func(u *User) bool { return u.HasContact() })
	out := make([]Contact, 0, len(ids))
	for _, id := range ids {
		u := d.users[id]
		out = append(out, Contact{Name: u.ContactName, City: u.City, Phone: u.Phone})
	}
	return out
}

// CountNewAds counts ads added at or after cutoff.
func (d *Database) CountNewAds(ctx context.Context, cutoff time.Time) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, ad := range d.ads {
		if ad.AddedAt.Valid() && !ad.AddedAt.Time().Before(cutoff) {
			n++
		}
	}
	return n
}

// ListUsersRegisteredBefore returns users created at or before cutoff,
// ordered by id.
func (d *Database) ListUsersRegisteredBefore(ctx context.Context, cutoff time.Time) []User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := d.userIDsLocked(func(u *User) bool {
		return u.CreatedAt.Valid() && !u.CreatedAt.Time().After(cutoff)
	})
	out := make([]User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *d.users[id])
	}
	return out
}

// Stats summarises the collections.
func (d *Database) Stats(ctx context.Context) Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Stats{Users: len(d.users), Ads: len(d.ads), BotOpen: d.botOpen}
	for _, subs := range d.subscriptions {
		s.Subscriptions += len(subs)
	}
	for _, offers := range d.offers {
		s.PriceOffers += len(offers)
	}
	return s
}

func (d *Database) userIDsLocked(keep func(*User) bool) []int64 {
	ids := []int64{}
	for id, u := range d.users {
		if keep(u) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
