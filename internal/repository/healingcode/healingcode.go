package healingcode

import (
	"context"
	"regexp"

	"sacred_computing/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type (
	HealingCodeRepo struct {
		collection *mongo.Collection
	}
)

// seedCodes are loaded the first time the collection is found empty.
var seedCodes = []model.HealingCode{
	{Code: "23 74 555", Description: "Healing headaches in general", Category: "CENTRAL NERVOUS SYSTEM"},
	{Code: "58 33 554", Description: "Healing migraine", Category: "CENTRAL NERVOUS SYSTEM"},
	{Code: "71 81 533", Description: "Back pain relief", Category: "CENTRAL NERVOUS SYSTEM"},
	{Code: "33 45 10101", Description: "Forgiveness", Category: "PSYCHOLOGICAL CONCERNS"},
	{Code: "11 96 888", Description: "Low self-esteem to healthy self-image", Category: "SELF-HELP"},
	{Code: "8888", Description: "Divine protection", Category: "SPIRITUAL"},
	{Code: "13 13 514", Description: "Stress relief/relaxation", Category: "SELF-HELP"},
	{Code: "517 489719 841", Description: "Increase self-confidence", Category: "SELF-HELP"},
	{Code: "56 57 893", Description: "Unconditional love", Category: "RELATIONSHIPS"},
	{Code: "888 412 1289018", Description: "Love (general & relationships)", Category: "RELATIONSHIPS"},
}

func NewHealingCodeRepo(db *mongo.Database) *HealingCodeRepo {
	return &HealingCodeRepo{
		collection: db.Collection("healing_codes"),
	}
}

// Seed inserts the sample codes when the collection is empty.
func (r *HealingCodeRepo) Seed(ctx context.Context) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	docs := make([]any, len(seedCodes))
	for i := range seedCodes {
		docs[i] = seedCodes[i]
	}
	_, err = r.collection.InsertMany(ctx, docs)
	return err
}

func (r *HealingCodeRepo) GetAll(ctx context.Context) ([]*model.HealingCode, error) {
	return r.find(ctx, bson.M{})
}

func (r *HealingCodeRepo) GetByCategory(ctx context.Context, category string) ([]*model.HealingCode, error) {
	return r.find(ctx, bson.M{"category": category})
}

// Search matches the query as a case-insensitive substring of the code,
// description, or category.
func (r *HealingCodeRepo) Search(ctx context.Context, query string) ([]*model.HealingCode, error) {
	if query == "" {
		return r.GetAll(ctx)
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"code": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		},
	}
	return r.find(ctx, filter)
}

func (r *HealingCodeRepo) Create(ctx context.Context, code *model.HealingCode) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, code)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id := res.InsertedID.(primitive.ObjectID)
	code.ID = id
	return id, nil
}

func (r *HealingCodeRepo) find(ctx context.Context, filter bson.M) ([]*model.HealingCode, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var codes []*model.HealingCode
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}
