package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/food-connect-platform/food-connect-api/types"
)

// Provider represents a database provider implementation
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	FoodProvider
	RequestProvider
	PopularProvider
}

// FoodProvider provides CRUD operations for types.Food structs
type FoodProvider interface {
	GetFood(ctx context.Context, id primitive.ObjectID) (*types.Food, error)
	GetAllFoods(ctx context.Context) ([]types.Food, error)
	GetFoodsByStatus(ctx context.Context, status types.FoodStatus) ([]types.Food, error)
	CreateFood(ctx context.Context, food types.Food) (primitive.ObjectID, error)
	UpdateFood(ctx context.Context, id primitive.ObjectID, update types.FoodUpdate) (*types.Food, error)
	RequestFood(ctx context.Context, id primitive.ObjectID, requestDetails map[string]interface{}) error
	DeleteFood(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// RequestProvider stores the free-form pickup requests
type RequestProvider interface {
	GetAllRequests(ctx context.Context) ([]types.Document, error)
	CreateRequest(ctx context.Context, request types.Document) (primitive.ObjectID, error)
}

// PopularProvider reads the popular items, which are never written through the API
type PopularProvider interface {
	GetPopular(ctx context.Context, id primitive.ObjectID) (types.Document, error)
	GetAllPopular(ctx context.Context) ([]types.Document, error)
}

// ParseID validates that the given string is a well-formed document identifier
// and converts it, before any query is issued with it
func ParseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewInvalidIDError(id)
	}

	return objectID, nil
}
