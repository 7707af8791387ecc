package mongo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/env"
	"github.com/food-connect-platform/food-connect-api/types"
)

const (
	defaultClusterHost  = "cluster0.yiash.mongodb.net"
	defaultDatabaseName = "foodConnectDb"
	appName             = "Cluster0"
)

// Provider implements db.Provider against a MongoDB deployment.
// A single client is shared by all requests; the driver pools connections
type Provider struct {
	connectionURI string
	databaseName  string
	client        *mongo.Client
	logger        zerolog.Logger
}

// NewProvider creates a new provider and loads values in from the environment.
// MONGO_DB_URI takes precedence over the individual credential variables
func NewProvider(logger zerolog.Logger) (*Provider, error) {
	dbName := env.GetEnvOrDefault("MONGO_DB_NAME", defaultDatabaseName)

	connectionURI := env.GetEnvOrDefault("MONGO_DB_URI", "")
	if connectionURI == "" {
		// DB_USER and DB_PASS are the names older deployments use
		dbUser, err := env.GetEnv("database user", "MONGO_DB_USER", "DB_USER")
		if err != nil {
			return nil, err
		}

		dbPass, err := env.GetEnv("database password", "MONGO_DB_PASS", "DB_PASS")
		if err != nil {
			return nil, err
		}

		clusterHost := env.GetEnvOrDefault("MONGO_DB_CLUSTER_HOST", defaultClusterHost)
		connectionURI = buildConnectionURI(dbUser, dbPass, clusterHost)
	}

	return &Provider{
		connectionURI: connectionURI,
		databaseName:  dbName,
		client:        nil,
		logger:        logger.With().Str("component", "mongo").Logger(),
	}, nil
}

func buildConnectionURI(user string, password string, clusterHost string) string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		url.QueryEscape(user), url.QueryEscape(password), clusterHost, appName)
}

// Connect opens the client using the Stable API v1 and pings the primary
func (p *Provider) Connect(ctx context.Context) error {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOptions := options.Client().
		ApplyURI(p.connectionURI).
		SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return errors.Wrap(err, "could not create MongoDB client")
	}

	// Ping the primary
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "could not ping MongoDB primary")
	}

	p.client = client

	// Initialize any collections/indices
	err = p.initialize(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Disconnect closes the client, if it was ever connected
func (p *Provider) Disconnect(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	err := p.client.Disconnect(ctx)
	if err != nil {
		return errors.Wrap(err, "could not disconnect MongoDB client")
	}

	return nil
}

// Create anything needed for the database,
// like indices
func (p *Provider) initialize(ctx context.Context) error {
	p.logger.Info().Str("database", p.databaseName).Msg("initializing the MongoDB database")

	_, err := p.foods().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "could not create foods status index")
	}

	return nil
}

func (p *Provider) foods() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("foods")
}

func (p *Provider) requests() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("requests")
}

func (p *Provider) popular() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("popular")
}

// byInsertion sorts on the ObjectID, whose leading bytes are the creation time
func byInsertion() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

func (p *Provider) GetFood(ctx context.Context, id primitive.ObjectID) (*types.Food, error) {
	var food types.Food
	err := p.foods().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NewNotFoundError(id.Hex())
		}

		return nil, errors.Wrapf(err, "could not get food '%s'", id.Hex())
	}

	return &food, nil
}

func (p *Provider) GetAllFoods(ctx context.Context) ([]types.Food, error) {
	return p.findFoods(ctx, bson.D{})
}

func (p *Provider) GetFoodsByStatus(ctx context.Context, status types.FoodStatus) ([]types.Food, error) {
	return p.findFoods(ctx, bson.D{{Key: "status", Value: status}})
}

func (p *Provider) findFoods(ctx context.Context, filter bson.D) ([]types.Food, error) {
	cursor, err := p.foods().Find(ctx, filter, byInsertion())
	if err != nil {
		return nil, errors.Wrap(err, "could not query foods")
	}

	var foods []types.Food
	err = cursor.All(ctx, &foods)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode foods")
	}

	// Return non-nil slice so JSON serialization is nice
	if foods == nil {
		return []types.Food{}, nil
	}

	return foods, nil
}

func (p *Provider) CreateFood(ctx context.Context, food types.Food) (primitive.ObjectID, error) {
	food.ID = primitive.NewObjectID()
	_, err := p.foods().InsertOne(ctx, food)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "could not insert food")
	}

	return food.ID, nil
}

func (p *Provider) UpdateFood(ctx context.Context, id primitive.ObjectID, update types.FoodUpdate) (*types.Food, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	updateQuery := bson.D{{Key: "$set", Value: update}}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedFood types.Food
	err := p.foods().FindOneAndUpdate(ctx, filter, updateQuery, findOptions).Decode(&updatedFood)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NewNotFoundError(id.Hex())
		}

		return nil, errors.Wrapf(err, "could not update food '%s'", id.Hex())
	}

	return &updatedFood, nil
}

func (p *Provider) RequestFood(ctx context.Context, id primitive.ObjectID, requestDetails map[string]interface{}) error {
	filter := bson.D{{Key: "_id", Value: id}}
	updateQuery := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: types.FoodRequested},
		{Key: "requestDetails", Value: requestDetails},
	}}}

	result, err := p.foods().UpdateOne(ctx, filter, updateQuery)
	if err != nil {
		return errors.Wrapf(err, "could not request food '%s'", id.Hex())
	}

	// Only a call that changed the document counts as a request
	if result.ModifiedCount == 0 {
		return db.NewNotFoundError(id.Hex())
	}

	return nil
}

func (p *Provider) DeleteFood(ctx context.Context, id primitive.ObjectID) (int64, error) {
	result, err := p.foods().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, errors.Wrapf(err, "could not delete food '%s'", id.Hex())
	}

	if result.DeletedCount == 0 {
		return 0, db.NewNotFoundError(id.Hex())
	}

	return result.DeletedCount, nil
}

func (p *Provider) GetAllRequests(ctx context.Context) ([]types.Document, error) {
	return findDocuments(ctx, p.requests())
}

func (p *Provider) CreateRequest(ctx context.Context, request types.Document) (primitive.ObjectID, error) {
	// Copy so the caller's map is left as it was given
	document := make(types.Document, len(request)+1)
	for key, value := range request {
		document[key] = value
	}
	id := primitive.NewObjectID()
	document["_id"] = id

	_, err := p.requests().InsertOne(ctx, document)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "could not insert request")
	}

	return id, nil
}

func (p *Provider) GetPopular(ctx context.Context, id primitive.ObjectID) (types.Document, error) {
	var document types.Document
	err := p.popular().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NewNotFoundError(id.Hex())
		}

		return nil, errors.Wrapf(err, "could not get popular item '%s'", id.Hex())
	}

	return document, nil
}

func (p *Provider) GetAllPopular(ctx context.Context) ([]types.Document, error) {
	return findDocuments(ctx, p.popular())
}

func findDocuments(ctx context.Context, collection *mongo.Collection) ([]types.Document, error) {
	cursor, err := collection.Find(ctx, bson.D{}, byInsertion())
	if err != nil {
		return nil, errors.Wrapf(err, "could not query %s", collection.Name())
	}

	var documents []types.Document
	err = cursor.All(ctx, &documents)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", collection.Name())
	}

	// Return non-nil slice so JSON serialization is nice
	if documents == nil {
		return []types.Document{}, nil
	}

	return documents, nil
}
