package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/metrics"
	"github.com/reelbase/catalog/models"
)

// ViewCounter bumps a video's view count with a single store-side increment,
// never a read-modify-write of the document.
type ViewCounter struct {
	videos VideoRepository
}

func NewViewCounter(videos VideoRepository) *ViewCounter {
	return &ViewCounter{videos: videos}
}

// Increment returns the video after the increment, or nil when it does not
// exist or is hidden by publishedOnly.
func (c *ViewCounter) Increment(ctx context.Context, id primitive.ObjectID, publishedOnly bool) (*models.Video, error) {
	v, err := c.videos.IncrementViews(ctx, id, publishedOnly)
	if err != nil {
		return nil, storeErr(err)
	}
	if v != nil {
		metrics.VideoViewsTotal.Inc()
	}
	return v, nil
}
