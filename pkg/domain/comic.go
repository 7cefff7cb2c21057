package domain

import (
	"path/filepath"
	"strings"
)

// Comic is a published listing in the marketplace catalog.
type Comic struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Publisher   string  `json:"publisher"`
	Edition     string  `json:"edition"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Price       float64 `json:"price,string"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category"`
	IsSold      bool    `json:"is_sold"`
	Seller      *Seller `json:"seller,omitempty"`
}

// Seller is the reduced view of the user who owns a listing.
type Seller struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	LastName    string  `json:"last_name"`
	Username    string  `json:"username"`
	TradesCount int     `json:"trades_count"`
	Rating      float64 `json:"rating,string"`
}

// DisplayName returns the seller's full name, falling back to the username.
func (s *Seller) DisplayName() string {
	if s == nil {
		return ""
	}
	full := strings.TrimSpace(s.Name + " " + s.LastName)
	if full == "" {
		return s.Username
	}
	return full
}

// Comic categories recognized by the marketplace.
var Categories = []string{
	"Independent",
	"SuperComic",
	"Eclipse",
	"Manga",
}

// Comic conditions, from mint to worn.
var Conditions = []string{
	"New",
	"Semi-used",
	"Used",
}

// MaxPrice is the upper bound accepted for a listing price.
const MaxPrice = 1_000_000_000

var categorySet = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

var conditionSet = func() map[string]bool {
	m := make(map[string]bool, len(Conditions))
	for _, c := range Conditions {
		m[c] = true
	}
	return m
}()

// ValidCategory returns true if category is a known comic category.
func ValidCategory(category string) bool {
	return categorySet[category]
}

// ValidCondition returns true if condition is a known comic condition.
func ValidCondition(condition string) bool {
	return conditionSet[condition]
}

// ValidPrice returns true when the price is positive and within the
// marketplace maximum.
func ValidPrice(price float64) bool {
	return price > 0 && price <= MaxPrice
}

// imageExtensions mirrors the formats the server-side image field accepts.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ValidImagePath returns true when path has an accepted image extension.
func ValidImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ComicDraft holds the fields of a listing before it is published.
type ComicDraft struct {
	Title       string
	Publisher   string
	Edition     string
	Condition   string
	Description string
	Price       float64
	ImagePath   string
	Category    string
}

// Validate reports the first problem with the draft, or "" when it is
// ready to publish. Every field including the image is required.
func (d ComicDraft) Validate() string {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return "title is required"
	case strings.TrimSpace(d.Publisher) == "":
		return "publisher is required"
	case strings.TrimSpace(d.Edition) == "":
		return "edition is required"
	case !ValidCondition(d.Condition):
		return "condition is required"
	case strings.TrimSpace(d.Description) == "":
		return "description is required"
	case d.Price <= 0:
		return "price must be greater than 0"
	case d.Price > MaxPrice:
		return "price must not exceed 1,000,000,000"
	case !ValidCategory(d.Category):
		return "category is required"
	case strings.TrimSpace(d.ImagePath) == "":
		return "image is required"
	case !ValidImagePath(d.ImagePath):
		return "image must be a JPG, JPEG, PNG or GIF file"
	}
	return ""
}
