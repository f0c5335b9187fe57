package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	MinCategories = 1
	MaxCategories = 3
)

var (
	ErrNoCategories       = errors.New("at least one category is required")
	ErrTooManyCategories  = errors.New("at most 3 categories are allowed")
	ErrInvalidCategoryTag = errors.New("category must be a string or an array of strings")
)

// LaunchTier is the catalog placement tier of a launch.
type LaunchTier string

const (
	LaunchTierFree     LaunchTier = "free"
	LaunchTierFeatured LaunchTier = "featured"
)

// Valid reports whether t is a known tier.
func (t LaunchTier) Valid() bool {
	return t == LaunchTierFree || t == LaunchTierFeatured
}

// Launch is a submitted product listing.
type Launch struct {
	ID          int64        `gorm:"primaryKey;column:id" json:"id"`
	Slug        string       `gorm:"column:slug;size:120;uniqueIndex;not null" json:"slug"`
	Name        string       `gorm:"column:name;size:100;not null" json:"name"`
	Tagline     string       `gorm:"column:tagline;size:160" json:"tagline"`
	Description string       `gorm:"column:description;type:text" json:"description"`
	WebsiteURL  string       `gorm:"column:website_url;size:500;not null" json:"websiteUrl"`
	LogoURL     string       `gorm:"column:logo_url;size:500" json:"logoUrl,omitempty"`
	Categories  CategoryList `gorm:"column:categories;type:jsonb;serializer:json;not null" json:"categories"`
	Tier        LaunchTier   `gorm:"column:tier;size:20;not null;default:'free';index" json:"tier"`
	UserID      *int64       `gorm:"column:user_id;index" json:"userId,omitempty"` // NULL until an imported launch is claimed
	ClaimKey    *string      `gorm:"column:claim_key;size:64;uniqueIndex" json:"-"`
	ClaimedAt   *time.Time   `gorm:"column:claimed_at" json:"claimedAt,omitempty"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true" json:"-"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (Launch) TableName() string {
	return "launches"
}

// IsOwnedBy reports whether userID owns the launch.
func (l *Launch) IsOwnedBy(userID int64) bool {
	return l.UserID != nil && *l.UserID == userID
}

// IsClaimable reports whether the launch was imported and not yet claimed.
func (l *Launch) IsClaimable() bool {
	return l.UserID == nil && l.ClaimKey != nil
}

// LaunchFilter describes a catalog query.
type LaunchFilter struct {
	Category string
	Search   string
	Tier     LaunchTier
	UserID   *int64
	Page     int
	Limit    int
}

// Offset returns the row offset for the filter's page.
func (f LaunchFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// LaunchPage is one page of catalog results.
type LaunchPage struct {
	Items      []*Launch `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// CategoryList is an ordered set of 1-3 normalized category tags.
type CategoryList []string

// UnmarshalJSON accepts either a single string or an array of strings.
func (c *CategoryList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*c = CategoryList{}
			return nil
		}
		*c = CategoryList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return ErrInvalidCategoryTag
	}
	*c = CategoryList(many)
	return nil
}

// Contains reports whether the list holds the normalized tag.
func (c CategoryList) Contains(tag string) bool {
	tag = NormalizeCategory(tag)
	for _, existing := range c {
		if existing == tag {
			return true
		}
	}
	return false
}

// NormalizeCategory trims, lowercases and dashes a single tag.
func NormalizeCategory(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.Join(strings.Fields(tag), "-")
}

// NormalizeCategories dedupes tags keeping first occurrence and enforces 1-3 entries.
func NormalizeCategories(raw []string) (CategoryList, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make(CategoryList, 0, len(raw))
	for _, tag := range raw {
		tag = NormalizeCategory(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if len(out) < MinCategories {
		return nil, ErrNoCategories
	}
	if len(out) > MaxCategories {
		return nil, ErrTooManyCategories
	}
	return out, nil
}
