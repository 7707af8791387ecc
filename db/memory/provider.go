package memory

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/types"
)

// Provider is an in-process implementation of db.Provider,
// used for local runs without a database and in tests.
// Each collection keeps its insertion order in a parallel ID slice
type Provider struct {
	sync.Mutex
	foodOrder []primitive.ObjectID
	foods     map[primitive.ObjectID]types.Food
	requests  []types.Document
	popular   []types.Document
}

// NewProvider creates an empty provider
func NewProvider() *Provider {
	return &Provider{
		foodOrder: []primitive.ObjectID{},
		foods:     make(map[primitive.ObjectID]types.Food),
		requests:  []types.Document{},
		popular:   []types.Document{},
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	return nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	return nil
}

// SeedPopular loads the read-only popular collection,
// assigning identifiers to documents that lack one
func (p *Provider) SeedPopular(documents ...types.Document) []primitive.ObjectID {
	p.Lock()
	defer p.Unlock()

	ids := make([]primitive.ObjectID, 0, len(documents))
	for _, document := range documents {
		stored := copyDocument(document)
		id, ok := stored["_id"].(primitive.ObjectID)
		if !ok {
			id = primitive.NewObjectID()
			stored["_id"] = id
		}

		p.popular = append(p.popular, stored)
		ids = append(ids, id)
	}

	return ids
}

func (p *Provider) GetFood(ctx context.Context, id primitive.ObjectID) (*types.Food, error) {
	p.Lock()
	defer p.Unlock()

	food, ok := p.foods[id]
	if !ok {
		return nil, db.NewNotFoundError(id.Hex())
	}

	copied := food.Copy()
	return &copied, nil
}

func (p *Provider) GetAllFoods(ctx context.Context) ([]types.Food, error) {
	return p.filterFoods(func(types.Food) bool { return true }), nil
}

func (p *Provider) GetFoodsByStatus(ctx context.Context, status types.FoodStatus) ([]types.Food, error) {
	return p.filterFoods(func(food types.Food) bool { return food.Status == status }), nil
}

func (p *Provider) filterFoods(keep func(types.Food) bool) []types.Food {
	p.Lock()
	defer p.Unlock()

	foods := []types.Food{}
	for _, id := range p.foodOrder {
		if food := p.foods[id]; keep(food) {
			foods = append(foods, food.Copy())
		}
	}

	return foods
}

func (p *Provider) CreateFood(ctx context.Context, food types.Food) (primitive.ObjectID, error) {
	p.Lock()
	defer p.Unlock()

	food.ID = primitive.NewObjectID()
	p.foods[food.ID] = food.Copy()
	p.foodOrder = append(p.foodOrder, food.ID)

	return food.ID, nil
}

func (p *Provider) UpdateFood(ctx context.Context, id primitive.ObjectID, update types.FoodUpdate) (*types.Food, error) {
	p.Lock()
	defer p.Unlock()

	food, ok := p.foods[id]
	if !ok {
		return nil, db.NewNotFoundError(id.Hex())
	}

	food = food.Copy()
	food.Set(types.FoodNameField, update.FoodName)
	food.Set(types.QuantityField, update.Quantity)
	food.Set(types.PickupLocationField, update.PickupLocation)
	p.foods[id] = food

	updated := food.Copy()
	return &updated, nil
}

func (p *Provider) RequestFood(ctx context.Context, id primitive.ObjectID, requestDetails map[string]interface{}) error {
	p.Lock()
	defer p.Unlock()

	food, ok := p.foods[id]
	if !ok {
		return db.NewNotFoundError(id.Hex())
	}

	// A request that changes nothing reports the food as not found,
	// the same as a zero modified count from MongoDB
	if food.Status == types.FoodRequested && reflect.DeepEqual(food.RequestDetails(), requestDetails) {
		return db.NewNotFoundError(id.Hex())
	}

	food = food.Copy()
	food.Status = types.FoodRequested
	food.Set(types.RequestDetailsField, requestDetails)
	p.foods[id] = food

	return nil
}

func (p *Provider) DeleteFood(ctx context.Context, id primitive.ObjectID) (int64, error) {
	p.Lock()
	defer p.Unlock()

	if _, ok := p.foods[id]; !ok {
		return 0, db.NewNotFoundError(id.Hex())
	}

	delete(p.foods, id)
	for i, orderedID := range p.foodOrder {
		if orderedID == id {
			p.foodOrder = append(p.foodOrder[:i], p.foodOrder[i+1:]...)
			break
		}
	}

	return 1, nil
}

func (p *Provider) GetAllRequests(ctx context.Context) ([]types.Document, error) {
	p.Lock()
	defer p.Unlock()

	return copyDocuments(p.requests), nil
}

func (p *Provider) CreateRequest(ctx context.Context, request types.Document) (primitive.ObjectID, error) {
	p.Lock()
	defer p.Unlock()

	id := primitive.NewObjectID()
	stored := copyDocument(request)
	stored["_id"] = id
	p.requests = append(p.requests, stored)

	return id, nil
}

func (p *Provider) GetPopular(ctx context.Context, id primitive.ObjectID) (types.Document, error) {
	p.Lock()
	defer p.Unlock()

	for _, document := range p.popular {
		if document["_id"] == id {
			return copyDocument(document), nil
		}
	}

	return nil, db.NewNotFoundError(id.Hex())
}

func (p *Provider) GetAllPopular(ctx context.Context) ([]types.Document, error) {
	p.Lock()
	defer p.Unlock()

	return copyDocuments(p.popular), nil
}

// copyDocument makes a shallow copy so stored documents
// are not mutated through returned maps
func copyDocument(document types.Document) types.Document {
	copied := make(types.Document, len(document)+1)
	for key, value := range document {
		copied[key] = value
	}

	return copied
}

func copyDocuments(documents []types.Document) []types.Document {
	copied := make([]types.Document, 0, len(documents))
	for _, document := range documents {
		copied = append(copied, copyDocument(document))
	}

	return copied
}
