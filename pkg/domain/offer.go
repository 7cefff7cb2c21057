package domain

import (
	"fmt"
	"strings"
	"time"
)

// Trade offer statuses. An offer starts pending and is terminal once the
// seller accepts or rejects it.
const (
	OfferPending  = 0
	OfferAccepted = 1
	OfferRejected = 2
)

// Offer types recognized by the marketplace.
var OfferTypes = []string{
	"service",
	"product",
}

const dateLayout = "2006-01-02"

// Date is a calendar day as the API serializes it ("2006-01-02"). Full
// RFC 3339 timestamps are tolerated on the way in.
type Date struct {
	time.Time
}

// UnmarshalJSON accepts "2006-01-02", an RFC 3339 timestamp, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return fmt.Errorf("domain.Date: parse %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON emits the wire form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// TradeOffer is a proposal made by a trader against another user's listing.
type TradeOffer struct {
	ID          int     `json:"id"`
	OfferType   string  `json:"offerType"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Comic       *Comic  `json:"comic,omitempty"`
	ComicID     int     `json:"comic_id,omitempty"`
	Seller      *Seller `json:"seller,omitempty"`
	Trader      *Seller `json:"trader,omitempty"`
	Status      int     `json:"status"`
	Image       string  `json:"image,omitempty"`
	Date        Date    `json:"date"`
}

// Pending returns true while the offer awaits the seller's decision.
func (o TradeOffer) Pending() bool {
	return o.Status == OfferPending
}

// StatusLabel returns the human-readable status name.
func (o TradeOffer) StatusLabel() string {
	switch o.Status {
	case OfferAccepted:
		return "accepted"
	case OfferRejected:
		return "rejected"
	default:
		return "pending"
	}
}

var offerTypeSet = func() map[string]bool {
	m := make(map[string]bool, len(OfferTypes))
	for _, t := range OfferTypes {
		m[t] = true
	}
	return m
}()

// ValidOfferType returns true if t is a known offer type.
func ValidOfferType(t string) bool {
	return offerTypeSet[t]
}

// ValidOfferStatus returns true for the two transitions a seller may
// perform on a pending offer.
func ValidOfferStatus(status int) bool {
	return status == OfferAccepted || status == OfferRejected
}

// OfferDraft holds the fields of a trade offer before it is submitted.
// The image is optional; when empty it is omitted from the request.
type OfferDraft struct {
	OfferType   string
	Title       string
	Description string
	ImagePath   string
}

// Validate reports the first problem with the draft, or "" when it is
// ready to submit.
func (d OfferDraft) Validate() string {
	switch {
	case !ValidOfferType(d.OfferType):
		return "offer type is required"
	case strings.TrimSpace(d.Title) == "":
		return "title is required"
	case strings.TrimSpace(d.Description) == "":
		return "description is required"
	case d.ImagePath != "" && !ValidImagePath(d.ImagePath):
		return "image must be a JPG, JPEG, PNG or GIF file"
	}
	return ""
}
