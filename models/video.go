package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Director          string             `bson:"director" json:"director"`
	ThumbnailURL      string             `bson:"thumbnailUrl" json:"thumbnailUrl"`
	ContentURL        string             `bson:"contentUrl" json:"contentUrl"`
	Duration          int64              `bson:"duration" json:"duration"` // seconds
	Genres            []string           `bson:"genre" json:"genre"`
	Cast              []string           `bson:"cast" json:"cast"`
	ReleaseYear       int                `bson:"releaseYear" json:"releaseYear"`
	Rating            float64            `bson:"rating" json:"rating"`
	Views             int64              `bson:"views" json:"views"`
	IsPublished       bool               `bson:"isPublished" json:"isPublished"`
	IsFeatured        bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
	FormattedDuration string             `bson:"-" json:"formattedDuration"`
}

// Decorate fills computed, non-persisted fields.
func (v *Video) Decorate() {
	v.FormattedDuration = FormatDuration(v.Duration)
}

// HasGenre matches a genre tag exactly.
func (v *Video) HasGenre(genre string) bool {
	for _, g := range v.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

func (v *Video) Summary() VideoSummary {
	return VideoSummary{ID: v.ID, Title: v.Title, ThumbnailURL: v.ThumbnailURL}
}

// FormatDuration renders seconds as "1h 2m 3s"; the hour part is omitted when zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

type VideoSummary struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	ThumbnailURL string             `json:"thumbnailUrl"`
}

// VideoInput is the admin payload for creating a catalog item. IsPublished is
// accepted for compatibility but new items always start unpublished.
type VideoInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=5000"`
	Director     string   `json:"director" validate:"required,max=200"`
	ThumbnailURL string   `json:"thumbnailUrl" validate:"required,url"`
	ContentURL   string   `json:"contentUrl" validate:"required,url"`
	Duration     int64    `json:"duration" validate:"gte=0"`
	Genres       []string `json:"genre" validate:"required,min=1,dive,required"`
	Cast         []string `json:"cast" validate:"dive,required"`
	ReleaseYear  int      `json:"releaseYear" validate:"required,gte=1870,lte=2100"`
	Rating       float64  `json:"rating" validate:"gte=0,lte=5"`
	IsPublished  bool     `json:"isPublished"`
	IsFeatured   bool     `json:"isFeatured"`
}

func (in *VideoInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Director = strings.TrimSpace(in.Director)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	in.ContentURL = strings.TrimSpace(in.ContentURL)
	in.Genres = trimAll(in.Genres)
	in.Cast = trimAll(in.Cast)
	return validateStruct(in)
}

// VideoUpdate is a partial update. Only the allow-listed pointer fields may
// be supplied; ID, CreatedAt, Views and the publication flags exist solely so
// that attempts to set them are rejected instead of silently dropped.
type VideoUpdate struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Director     *string   `json:"director,omitempty"`
	ThumbnailURL *string   `json:"thumbnailUrl,omitempty"`
	ContentURL   *string   `json:"contentUrl,omitempty"`
	Duration     *int64    `json:"duration,omitempty"`
	Genres       *[]string `json:"genre,omitempty"`
	Cast         *[]string `json:"cast,omitempty"`
	ReleaseYear  *int      `json:"releaseYear,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`

	ID          *string    `json:"id,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Views       *int64     `json:"views,omitempty"`
	IsPublished *bool      `json:"isPublished,omitempty"`
	IsFeatured  *bool      `json:"isFeatured,omitempty"`
}

// Validate checks each supplied field on its own and normalizes text values.
func (u *VideoUpdate) Validate() error {
	switch {
	case u.ID != nil:
		return immutable("id")
	case u.CreatedAt != nil:
		return immutable("createdAt")
	case u.Views != nil:
		return immutable("views")
	case u.IsPublished != nil:
		return invalid("isPublished", "field 'isPublished' can only be changed with the publish toggle")
	case u.IsFeatured != nil:
		return invalid("isFeatured", "field 'isFeatured' can only be changed with the feature toggle")
	}

	var checks []fieldCheck
	if u.Title != nil {
		*u.Title = strings.TrimSpace(*u.Title)
		checks = append(checks, fieldCheck{"title", *u.Title, "required,max=200"})
	}
	if u.Description != nil {
		*u.Description = strings.TrimSpace(*u.Description)
		checks = append(checks, fieldCheck{"description", *u.Description, "required,max=5000"})
	}
	if u.Director != nil {
		*u.Director = strings.TrimSpace(*u.Director)
		checks = append(checks, fieldCheck{"director", *u.Director, "required,max=200"})
	}
	if u.ThumbnailURL != nil {
		*u.ThumbnailURL = strings.TrimSpace(*u.ThumbnailURL)
		checks = append(checks, fieldCheck{"thumbnailUrl", *u.ThumbnailURL, "required,url"})
	}
	if u.ContentURL != nil {
		*u.ContentURL = strings.TrimSpace(*u.ContentURL)
		checks = append(checks, fieldCheck{"contentUrl", *u.ContentURL, "required,url"})
	}
	if u.Duration != nil {
		checks = append(checks, fieldCheck{"duration", *u.Duration, "gte=0"})
	}
	if u.Genres != nil {
		*u.Genres = trimAll(*u.Genres)
		checks = append(checks, fieldCheck{"genre", *u.Genres, "required,min=1,dive,required"})
	}
	if u.Cast != nil {
		*u.Cast = trimAll(*u.Cast)
		checks = append(checks, fieldCheck{"cast", *u.Cast, "dive,required"})
	}
	if u.ReleaseYear != nil {
		checks = append(checks, fieldCheck{"releaseYear", *u.ReleaseYear, "gte=1870,lte=2100"})
	}
	if u.Rating != nil {
		checks = append(checks, fieldCheck{"rating", *u.Rating, "gte=0,lte=5"})
	}

	for _, c := range checks {
		if err := validateVar(c.field, c.value, c.tag); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether no updatable field was supplied.
func (u *VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Director == nil &&
		u.ThumbnailURL == nil && u.ContentURL == nil && u.Duration == nil &&
		u.Genres == nil && u.Cast == nil && u.ReleaseYear == nil && u.Rating == nil
}

type fieldCheck struct {
	field string
	value any
	tag   string
}

// VideoFlag names a boolean field that can be toggled.
type VideoFlag string

const (
	FlagPublished VideoFlag = "isPublished"
	FlagFeatured  VideoFlag = "isFeatured"
)

// VideoSort selects result ordering.
type VideoSort int

const (
	SortNewest VideoSort = iota // createdAt descending
	SortMostViewed              // views descending
)

// VideoFilter is the store-agnostic predicate for catalog queries. All set
// conditions are ANDed; Keyword matches title OR description.
type VideoFilter struct {
	Keyword       string
	Genre         string
	PublishedOnly bool
	FeaturedOnly  bool
}

type VideoQuery struct {
	Filter VideoFilter
	Sort   VideoSort
	Limit  int64
	Skip   int64
}

// VideoPage is one page of a catalog listing.
type VideoPage struct {
	Videos []Video `json:"videos"`
	Page   int64   `json:"page"`
	Pages  int64   `json:"pages"`
	Total  int64   `json:"total"`
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
