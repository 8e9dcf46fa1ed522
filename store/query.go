package store

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/models"
)

// videoFilterDoc translates a catalog filter into a Mongo predicate. The
// keyword is matched literally and case-insensitively against title or
// description.
func videoFilterDoc(f models.VideoFilter) bson.M {
	filter := bson.M{}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.Genre != "" {
		filter["genre"] = f.Genre
	}
	if f.PublishedOnly {
		filter["isPublished"] = true
	}
	if f.FeaturedOnly {
		filter["isFeatured"] = true
	}
	return filter
}

// videoSortDoc always ends in _id so equal keys page deterministically.
func videoSortDoc(s models.VideoSort) bson.D {
	if s == models.SortMostViewed {
		return bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

func videoUpdateDoc(u models.VideoUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Director != nil {
		set["director"] = *u.Director
	}
	if u.ThumbnailURL != nil {
		set["thumbnailUrl"] = *u.ThumbnailURL
	}
	if u.ContentURL != nil {
		set["contentUrl"] = *u.ContentURL
	}
	if u.Duration != nil {
		set["duration"] = *u.Duration
	}
	if u.Genres != nil {
		set["genre"] = *u.Genres
	}
	if u.Cast != nil {
		set["cast"] = *u.Cast
	}
	if u.ReleaseYear != nil {
		set["releaseYear"] = *u.ReleaseYear
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	return bson.M{"$set": set}
}

// toggleDoc is a pipeline update that negates flag server-side.
func toggleDoc(flag models.VideoFlag, now time.Time) bson.A {
	field := string(flag)
	return bson.A{
		bson.M{"$set": bson.M{
			field:       bson.M{"$not": bson.A{"$" + field}},
			"updatedAt": now,
		}},
	}
}
