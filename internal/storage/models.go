package storage

import (
	"encoding/json"
	"strings"
)

// UserStatus is the approval state of a user. Transitions are not restricted:
// any status may be set from any other.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
	StatusBlocked  UserStatus = "blocked"
)

// AuctionMode controls how bids on an ad are collected.
type AuctionMode string

const (
	AuctionOff        AuctionMode = "off"
	AuctionAscending  AuctionMode = "ascending"
	AuctionDescending AuctionMode = "descending"
)

// Valid reports whether m is one of the known auction modes.
func (m AuctionMode) Valid() bool {
	switch m {
	case AuctionOff, AuctionAscending, AuctionDescending:
		return true
	}
	return false
}

// ParseAuctionMode normalises s into an AuctionMode. The short forms "up" and
// "down" written by older data files map to ascending and descending.
func ParseAuctionMode(s string) (AuctionMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return AuctionOff, true
	case "ascending", "up":
		return AuctionAscending, true
	case "descending", "down":
		return AuctionDescending, true
	}
	return AuctionMode(s), false
}

// MediaType selects which photo list of an ad an attachment goes to.
type MediaType string

const (
	MediaPhoto      MediaType = "photo"
	MediaInspection MediaType = "inspection"
	MediaThickness  MediaType = "thickness"
)

// OfferKind tells buyer offers apart from seller counter-offers.
type OfferKind string

const (
	OfferBuyer   OfferKind = "offer"
	OfferCounter OfferKind = "counter"
)

// User is a bot user. Contact fields stay empty until the user shares them.
type User struct {
	ID                  int64      `json:"user_id"`
	DisplayName         string     `json:"display_name"`
	Status              UserStatus `json:"status"`
	ContactName         string     `json:"contact_name"`
	Phone               string     `json:"phone"`
	City                string     `json:"city"`
	ReceiptAttachmentID string     `json:"receipt_attachment_id"`
	CreatedAt           Timestamp  `json:"created_at"`
	LastActiveAt        Timestamp  `json:"last_active_at"`
}

// UnmarshalJSON also accepts the key names of older data files: username,
// name, cheque_file_id and last_active. Current names win when both are set.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		Username     *string   `json:"username"`
		Name         *string   `json:"name"`
		ChequeFileID *string   `json:"cheque_file_id"`
		LastActive   Timestamp `json:"last_active"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.DisplayName == "" && aux.Username != nil {
		u.DisplayName = *aux.Username
	}
	if u.ContactName == "" && aux.Name != nil {
		u.ContactName = *aux.Name
	}
	if u.ReceiptAttachmentID == "" && aux.ChequeFileID != nil {
		u.ReceiptAttachmentID = *aux.ChequeFileID
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = aux.LastActive
	}
	return nil
}

// HasContact reports whether name, city and phone are all filled in.
func (u User) HasContact() bool {
	return u.ContactName != "" && u.City != "" && u.Phone != ""
}

// Ad is a vehicle listing. Photo lists hold opaque attachment references
// issued by the messaging platform.
type Ad struct {
	ID               int64       `json:"ad_id"`
	Title            string      `json:"title"`
	Model            string      `json:"model"`
	Year             int         `json:"year"`
	Price            int64       `json:"price"`
	Description      string      `json:"description"`
	Photos           []string    `json:"photos"`
	InspectionPhotos []string    `json:"inspection_photos"`
	ThicknessPhotos  []string    `json:"thickness_photos"`
	AddedAt          Timestamp   `json:"added_at"`
	AuctionMode      AuctionMode `json:"auction_mode"`
}

// UnmarshalJSON also accepts added_date, written by older data files.
func (a *Ad) UnmarshalJSON(data []byte) error {
	type plain Ad
	aux := struct {
		*plain
		AddedDate Timestamp `json:"added_date"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.AddedAt.IsZero() {
		a.AddedAt = aux.AddedDate
	}
	return nil
}

func (a Ad) clone() Ad {
	a.Photos = cloneStrings(a.Photos)
	a.InspectionPhotos = cloneStrings(a.InspectionPhotos)
	a.ThicknessPhotos = cloneStrings(a.ThicknessPhotos)
	return a
}

// AdDraft holds the fields supplied when an ad is created.
type AdDraft struct {
	Title            string
	Model            string
	Year             int
	Price            int64
	Description      string
	Photos           []string
	InspectionPhotos []string
	ThicknessPhotos  []string
}

// PriceOffer is a price proposed by a user for an ad.
type PriceOffer struct {
	UserID    int64     `json:"user_id"`
	Price     int64     `json:"price"`
	Kind      OfferKind `json:"kind"`
	CreatedAt Timestamp `json:"created_at"`
}

// SubscriptionFilter is a saved search. Nil bounds and an empty model match
// anything.
type SubscriptionFilter struct {
	Model    string `json:"model"`
	PriceMin *int64 `json:"price_min"`
	PriceMax *int64 `json:"price_max"`
	YearMin  *int   `json:"year_min"`
	YearMax  *int   `json:"year_max"`
}

// Subscription is a saved search owned by a user. RowID is unique across all
// users.
type Subscription struct {
	RowID  int64 `json:"rowid"`
	UserID int64 `json:"user_id"`
	SubscriptionFilter
}

func (s Subscription) clone() Subscription {
	s.PriceMin = clonePtr(s.PriceMin)
	s.PriceMax = clonePtr(s.PriceMax)
	s.YearMin = clonePtr(s.YearMin)
	s.YearMax = clonePtr(s.YearMax)
	return s
}

// Contact is one row of the contact export.
type Contact struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
}

// Stats is a point-in-time summary of the collections.
type Stats struct {
	Users         int
	Ads           int
	Subscriptions int
	PriceOffers   int
	BotOpen       bool
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
