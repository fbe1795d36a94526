package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// SoulArchive is a stored pattern: an intention, the derivation that
	// was applied to it, and the resulting descriptor data.
	SoulArchive struct {
		ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
		Title       string             `bson:"title" json:"title"`
		Description string             `bson:"description,omitempty" json:"description,omitempty"`
		Intention   string             `bson:"intention,omitempty" json:"intention,omitempty"`
		Frequency   string             `bson:"frequency" json:"frequency"`
		Boost       bool               `bson:"boost" json:"boost"`
		Multiplier  int                `bson:"multiplier" json:"multiplier"`
		PatternType string             `bson:"pattern_type" json:"pattern_type"`
		PatternData map[string]any     `bson:"pattern_data" json:"pattern_data"`
		CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	}

	HealingCode struct {
		ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
		Code        string             `bson:"code" json:"code"`
		Description string             `bson:"description" json:"description"`
		Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	}

	User struct {
		ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
		Username string             `bson:"username" json:"username"`
		Password string             `bson:"password" json:"-"`
	}
)
