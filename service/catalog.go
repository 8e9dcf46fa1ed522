package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

const (
	ListPageSize  int64 = 12
	FeaturedLimit int64 = 6
	TrendingLimit int64 = 10
	GenreLimit    int64 = 10
)

var errVideoNotFound = apperr.NotFound("video not found")

// ListParams are the caller-supplied listing parameters. Page values below 1
// are treated as 1.
type ListParams struct {
	Keyword string
	Genre   string
	Page    int64
}

// CatalogQueryEngine serves role-scoped catalog reads and the admin mutations.
// Mutations assume the caller was already authorized by AccessGuard.
type CatalogQueryEngine struct {
	videos VideoRepository
	views  *ViewCounter
	media  MediaStore
	now    func() time.Time
	log    *zap.Logger
}

// NewCatalogQueryEngine builds the engine. media may be nil, in which case
// s3:// locators cannot be played back.
func NewCatalogQueryEngine(videos VideoRepository, views *ViewCounter, media MediaStore, log *zap.Logger) *CatalogQueryEngine {
	return &CatalogQueryEngine{
		videos: videos,
		views:  views,
		media:  media,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// List returns one page of the catalog. Non-admin callers only ever see
// published items.
func (e *CatalogQueryEngine) List(ctx context.Context, caller *Identity, p ListParams) (*models.VideoPage, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	filter := models.VideoFilter{
		Keyword:       strings.TrimSpace(p.Keyword),
		Genre:         strings.TrimSpace(p.Genre),
		PublishedOnly: !caller.admin(),
	}
	total, err := e.videos.CountVideos(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	pages := pageCount(total, ListPageSize)
	// Pages past the last one are empty; this also keeps the skip from overflowing.
	var videos []models.Video
	if page <= pages {
		videos, err = e.videos.FindVideos(ctx, models.VideoQuery{
			Filter: filter,
			Sort:   models.SortNewest,
			Limit:  ListPageSize,
			Skip:   (page - 1) * ListPageSize,
		})
		if err != nil {
			return nil, storeErr(err)
		}
	}
	return &models.VideoPage{
		Videos: decorate(videos),
		Page:   page,
		Pages:  pages,
		Total:  total,
	}, nil
}

// Featured, Trending and ByGenre are the public shelves; they show published
// items only, whoever asks.
func (e *CatalogQueryEngine) Featured(ctx context.Context) ([]models.Video, error) {
	return e.shelf(ctx, models.VideoFilter{PublishedOnly: true, FeaturedOnly: true}, models.SortNewest, FeaturedLimit)
}

func (e *CatalogQueryEngine) Trending(ctx context.Context) ([]models.Video, error) {
	return e.shelf(ctx, models.VideoFilter{PublishedOnly: true}, models.SortMostViewed, TrendingLimit)
}

func (e *CatalogQueryEngine) ByGenre(ctx context.Context, genre string) ([]models.Video, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, apperr.Invalid("genre", "field 'genre' is required")
	}
	return e.shelf(ctx, models.VideoFilter{PublishedOnly: true, Genre: genre}, models.SortNewest, GenreLimit)
}

func (e *CatalogQueryEngine) shelf(ctx context.Context, f models.VideoFilter, sort models.VideoSort, limit int64) ([]models.Video, error) {
	videos, err := e.videos.FindVideos(ctx, models.VideoQuery{Filter: f, Sort: sort, Limit: limit})
	if err != nil {
		return nil, storeErr(err)
	}
	return decorate(videos), nil
}

// Get fetches one item and records a view in the same store operation.
// Unpublished items are NotFound for non-admin callers.
func (e *CatalogQueryEngine) Get(ctx context.Context, caller *Identity, id string) (*models.Video, error) {
	oid, err := videoID(id)
	if err != nil {
		return nil, err
	}
	v, err := e.views.Increment(ctx, oid, !caller.admin())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errVideoNotFound
	}
	v.Decorate()
	return v, nil
}

// PlaybackURL resolves the item's content locator without counting a view.
// s3:// locators become presigned URLs; anything else is returned as stored.
func (e *CatalogQueryEngine) PlaybackURL(ctx context.Context, caller *Identity, id string) (string, error) {
	v, err := e.visible(ctx, caller, id)
	if err != nil {
		return "", err
	}
	key, ok := mediaKey(v.ContentURL)
	if !ok {
		return v.ContentURL, nil
	}
	if e.media == nil {
		return "", apperr.Internal(errors.New("media storage is not configured"))
	}
	url, err := e.media.PresignedGetURL(ctx, key, PlaybackExpiry)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return url, nil
}

// Create stores a new item. It always starts unpublished.
func (e *CatalogQueryEngine) Create(ctx context.Context, in models.VideoInput) (*models.Video, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := e.now()
	cast := in.Cast
	if cast == nil {
		cast = []string{}
	}
	v := &models.Video{
		Title:        in.Title,
		Description:  in.Description,
		Director:     in.Director,
		ThumbnailURL: in.ThumbnailURL,
		ContentURL:   in.ContentURL,
		Duration:     in.Duration,
		Genres:       in.Genres,
		Cast:         cast,
		ReleaseYear:  in.ReleaseYear,
		Rating:       in.Rating,
		IsPublished:  false,
		IsFeatured:   in.IsFeatured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.videos.InsertVideo(ctx, v); err != nil {
		return nil, storeErr(err)
	}
	e.log.Info("video created", zap.String("videoId", v.ID.Hex()), zap.String("title", v.Title))
	v.Decorate()
	return v, nil
}

// Update merges the supplied allow-listed fields into the item.
func (e *CatalogQueryEngine) Update(ctx context.Context, id string, u models.VideoUpdate) (*models.Video, error) {
	oid, err := videoID(id)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var v *models.Video
	if u.Empty() {
		v, err = e.videos.VideoByID(ctx, oid)
	} else {
		v, err = e.videos.UpdateVideo(ctx, oid, u)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if v == nil {
		return nil, errVideoNotFound
	}
	v.Decorate()
	return v, nil
}

// Delete removes the item and, best effort, any media it owned in the bucket.
func (e *CatalogQueryEngine) Delete(ctx context.Context, id string) error {
	oid, err := videoID(id)
	if err != nil {
		return err
	}
	v, err := e.videos.VideoByID(ctx, oid)
	if err != nil {
		return storeErr(err)
	}
	if v == nil {
		return errVideoNotFound
	}
	deleted, err := e.videos.DeleteVideo(ctx, oid)
	if err != nil {
		return storeErr(err)
	}
	if !deleted {
		return errVideoNotFound
	}
	e.log.Info("video deleted", zap.String("videoId", id))
	e.removeMedia(ctx, v.ContentURL, v.ThumbnailURL)
	return nil
}

func (e *CatalogQueryEngine) TogglePublish(ctx context.Context, id string) (*models.Video, error) {
	return e.toggle(ctx, id, models.FlagPublished)
}

func (e *CatalogQueryEngine) ToggleFeature(ctx context.Context, id string) (*models.Video, error) {
	return e.toggle(ctx, id, models.FlagFeatured)
}

func (e *CatalogQueryEngine) toggle(ctx context.Context, id string, flag models.VideoFlag) (*models.Video, error) {
	oid, err := videoID(id)
	if err != nil {
		return nil, err
	}
	v, err := e.videos.ToggleVideoFlag(ctx, oid, flag)
	if err != nil {
		return nil, storeErr(err)
	}
	if v == nil {
		return nil, errVideoNotFound
	}
	e.log.Info("video flag toggled",
		zap.String("videoId", id),
		zap.String("flag", string(flag)),
		zap.Bool("isPublished", v.IsPublished),
		zap.Bool("isFeatured", v.IsFeatured))
	v.Decorate()
	return v, nil
}

func (e *CatalogQueryEngine) visible(ctx context.Context, caller *Identity, id string) (*models.Video, error) {
	oid, err := videoID(id)
	if err != nil {
		return nil, err
	}
	v, err := e.videos.VideoByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err)
	}
	if v == nil || (!v.IsPublished && !caller.admin()) {
		return nil, errVideoNotFound
	}
	return v, nil
}

func (e *CatalogQueryEngine) removeMedia(ctx context.Context, locators ...string) {
	if e.media == nil {
		return
	}
	for _, loc := range locators {
		key, ok := mediaKey(loc)
		if !ok {
			continue
		}
		if err := e.media.Delete(ctx, key); err != nil {
			e.log.Warn("failed to delete media object", zap.String("key", key), zap.Error(err))
		}
	}
}

// videoID maps a malformed id to NotFound: no item can have it.
func videoID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errVideoNotFound
	}
	return oid, nil
}

func pageCount(total, size int64) int64 {
	return (total + size - 1) / size
}

func decorate(videos []models.Video) []models.Video {
	if videos == nil {
		return []models.Video{}
	}
	for i := range videos {
		videos[i].Decorate()
	}
	return videos
}
