package archive

import (
	"context"

	"sacred_computing/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type (
	ArchiveRepo struct {
		collection *mongo.Collection
	}
)

func NewArchiveRepo(db *mongo.Database) *ArchiveRepo {
	return &ArchiveRepo{
		collection: db.Collection("soul_archives"),
	}
}

// GetAll returns every archive, newest first.
func (r *ArchiveRepo) GetAll(ctx context.Context) ([]*model.SoulArchive, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var archives []*model.SoulArchive
	if err := cursor.All(ctx, &archives); err != nil {
		return nil, err
	}
	return archives, nil
}

func (r *ArchiveRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.SoulArchive, error) {
	filter := bson.M{
		"_id": id,
	}

	var archive model.SoulArchive
	err := r.collection.FindOne(ctx, filter).Decode(&archive)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &archive, nil
}

func (r *ArchiveRepo) Create(ctx context.Context, archive *model.SoulArchive) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, archive)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id := res.InsertedID.(primitive.ObjectID)
	archive.ID = id
	return id, nil
}

// Delete removes the archive and reports whether anything was removed.
func (r *ArchiveRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
