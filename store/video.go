package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reelbase/catalog/models"
)

func (db *DB) InsertVideo(ctx context.Context, video *models.Video) error {
	res, err := db.Videos().InsertOne(ctx, video, options.InsertOne())
	if err != nil {
		return err
	}
	video.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) FindVideos(ctx context.Context, q models.VideoQuery) ([]models.Video, error) {
	opts := options.Find().SetSort(videoSortDoc(q.Sort))
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	return db.findVideos(ctx, videoFilterDoc(q.Filter), opts)
}

func (db *DB) CountVideos(ctx context.Context, f models.VideoFilter) (int64, error) {
	return db.Videos().CountDocuments(ctx, videoFilterDoc(f))
}

func (db *DB) VideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	err := db.Videos().FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VideosByIDs returns the matching videos in no particular order; ids that no
// longer exist are skipped.
func (db *DB) VideosByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return db.findVideos(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (db *DB) UpdateVideo(ctx context.Context, id primitive.ObjectID, update models.VideoUpdate) (*models.Video, error) {
	return db.findOneAndUpdateVideo(ctx, bson.M{"_id": id}, videoUpdateDoc(update, time.Now().UTC()))
}

func (db *DB) DeleteVideo(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Videos().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (db *DB) ToggleVideoFlag(ctx context.Context, id primitive.ObjectID, flag models.VideoFlag) (*models.Video, error) {
	return db.findOneAndUpdateVideo(ctx, bson.M{"_id": id}, toggleDoc(flag, time.Now().UTC()))
}

// IncrementViews leaves updatedAt alone; a view is not an edit.
func (db *DB) IncrementViews(ctx context.Context, id primitive.ObjectID, publishedOnly bool) (*models.Video, error) {
	filter := bson.M{"_id": id}
	if publishedOnly {
		filter["isPublished"] = true
	}
	return db.findOneAndUpdateVideo(ctx, filter, bson.M{"$inc": bson.M{"views": 1}})
}

func (db *DB) findVideos(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Video, error) {
	cur, err := db.Videos().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	videos := []models.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (db *DB) findOneAndUpdateVideo(ctx context.Context, filter bson.M, update any) (*models.Video, error) {
	var v models.Video
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.Videos().FindOneAndUpdate(ctx, filter, update, opts).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
