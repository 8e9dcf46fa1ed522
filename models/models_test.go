package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
)

func validInput() VideoInput {
	return VideoInput{
		Title:        "  The Long Take ",
		Description:  "A film about a single shot.",
		Director:     "A. Director",
		ThumbnailURL: "https://cdn.example.com/t.jpg",
		ContentURL:   "s3://videos/long-take.mp4",
		Duration:     5400,
		Genres:       []string{"Drama"},
		Cast:         []string{"Lead One", "Lead Two"},
		ReleaseYear:  2021,
		Rating:       4.5,
	}
}

func requireInvalid(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	e := apperr.As(err)
	assert.Equal(t, apperr.KindInvalidInput, e.Kind)
	assert.Equal(t, field, e.Field)
}

func TestVideoInputValidate(t *testing.T) {
	in := validInput()
	require.NoError(t, in.Validate())
	assert.Equal(t, "The Long Take", in.Title)

	tests := []struct {
		name  string
		mut   func(*VideoInput)
		field string
	}{
		{"blank title", func(in *VideoInput) { in.Title = "   " }, "title"},
		{"missing description", func(in *VideoInput) { in.Description = "" }, "description"},
		{"missing director", func(in *VideoInput) { in.Director = "" }, "director"},
		{"bad thumbnail", func(in *VideoInput) { in.ThumbnailURL = "not a url" }, "thumbnailUrl"},
		{"no genres", func(in *VideoInput) { in.Genres = nil }, "genre"},
		{"empty genre tag", func(in *VideoInput) { in.Genres = []string{"Drama", " "} }, "genre"},
		{"rating above range", func(in *VideoInput) { in.Rating = 5.5 }, "rating"},
		{"rating below range", func(in *VideoInput) { in.Rating = -1 }, "rating"},
		{"negative duration", func(in *VideoInput) { in.Duration = -1 }, "duration"},
		{"missing year", func(in *VideoInput) { in.ReleaseYear = 0 }, "releaseYear"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mut(&in)
			requireInvalid(t, in.Validate(), tc.field)
		})
	}
}

func TestVideoUpdateRejectsImmutableFields(t *testing.T) {
	id := "abc"
	now := time.Now()
	views := int64(10)
	published := true

	requireInvalid(t, (&VideoUpdate{ID: &id}).Validate(), "id")
	requireInvalid(t, (&VideoUpdate{CreatedAt: &now}).Validate(), "createdAt")
	requireInvalid(t, (&VideoUpdate{Views: &views}).Validate(), "views")
	requireInvalid(t, (&VideoUpdate{IsPublished: &published}).Validate(), "isPublished")
}

func TestVideoUpdateValidatesFieldByField(t *testing.T) {
	title := "  New title "
	rating := 3.0
	u := VideoUpdate{Title: &title, Rating: &rating}
	require.NoError(t, u.Validate())
	assert.Equal(t, "New title", *u.Title)
	assert.False(t, u.Empty())

	blank := " "
	requireInvalid(t, (&VideoUpdate{Description: &blank}).Validate(), "description")

	tooHigh := 7.0
	requireInvalid(t, (&VideoUpdate{Rating: &tooHigh}).Validate(), "rating")

	noGenres := []string{}
	requireInvalid(t, (&VideoUpdate{Genres: &noGenres}).Validate(), "genre")

	assert.True(t, (&VideoUpdate{}).Empty())
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Username: " alice ", Email: " Alice@Example.COM ", Password: "secret1"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, "alice@example.com", in.Email)

	requireInvalid(t, (&RegisterInput{Username: "al", Email: "a@b.co", Password: "secret1"}).Validate(), "username")
	requireInvalid(t, (&RegisterInput{Username: "alice", Email: "nope", Password: "secret1"}).Validate(), "email")
	requireInvalid(t, (&RegisterInput{Username: "alice", Email: "a@b.co", Password: "123"}).Validate(), "password")
	requireInvalid(t, (&RegisterInput{Username: "a@b.co", Email: "x@b.co", Password: "secret1"}).Validate(), "username")
	// 40 runes pass the rune count but exceed bcrypt's 72 bytes.
	requireInvalid(t, (&RegisterInput{Username: "alice", Email: "a@b.co", Password: strings.Repeat("é", 40)}).Validate(), "password")
}

func TestProfileUpdateValidate(t *testing.T) {
	email := " NEW@example.com"
	p := ProfileUpdate{Email: &email}
	require.NoError(t, p.Validate())
	assert.Equal(t, "new@example.com", *p.Email)

	short := "x"
	requireInvalid(t, (&ProfileUpdate{Password: &short}).Validate(), "password")
	wide := strings.Repeat("é", 40)
	requireInvalid(t, (&ProfileUpdate{Password: &wide}).Validate(), "password")
	at := "someone@else"
	requireInvalid(t, (&ProfileUpdate{Username: &at}).Validate(), "username")
	require.NoError(t, (&ProfileUpdate{}).Validate())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 0s", FormatDuration(0))
	assert.Equal(t, "2m 5s", FormatDuration(125))
	assert.Equal(t, "1h 0m 1s", FormatDuration(3601))
	assert.Equal(t, "2h 30m 0s", FormatDuration(9000))
	assert.Equal(t, "0m 0s", FormatDuration(-5))
}

func TestUserInWatchlist(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := User{Watchlist: []primitive.ObjectID{a}}
	assert.True(t, u.InWatchlist(a))
	assert.False(t, u.InWatchlist(b))
}

func TestVideoHelpers(t *testing.T) {
	v := Video{Title: "T", Duration: 61, Genres: []string{"Sci-Fi"}}
	v.Decorate()
	assert.Equal(t, "1m 1s", v.FormattedDuration)
	assert.True(t, v.HasGenre("Sci-Fi"))
	assert.False(t, v.HasGenre("sci-fi"))
	assert.Equal(t, "T", v.Summary().Title)
}
