package types

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodStatus is the lifecycle state of a food listing
type FoodStatus string

const (
	// FoodAvailable marks a listing that can still be requested
	FoodAvailable FoodStatus = "available"
	// FoodRequested marks a listing that has a pending pickup request
	FoodRequested FoodStatus = "requested"
)

// Keys of the food fields the server reads or writes itself
const (
	FoodNameField       = "foodName"
	QuantityField       = "quantity"
	PickupLocationField = "pickupLocation"
	RequestDetailsField = "requestDetails"
	CreatedAtField      = "createdAt"
)

// Food is the document stored in MongoDB for a single food listing.
// Only the identifier and the status are typed; every other field is kept
// in Fields exactly as the donor sent it
type Food struct {
	ID     primitive.ObjectID     `json:"-" bson:"_id,omitempty"`
	Status FoodStatus             `json:"-" bson:"status,omitempty" validate:"omitempty,oneof=available requested"`
	Fields map[string]interface{} `json:"-" bson:",inline"`
}

// Name returns the food name, or "" when it was not sent as a string
func (f Food) Name() string {
	name, _ := f.Fields[FoodNameField].(string)
	return name
}

// RequestDetails returns the body of the pickup request attached to the food, if any
func (f Food) RequestDetails() map[string]interface{} {
	details, _ := f.Fields[RequestDetailsField].(map[string]interface{})
	return details
}

// Set stores a free-form field on the food
func (f *Food) Set(key string, value interface{}) {
	if f.Fields == nil {
		f.Fields = make(map[string]interface{})
	}
	f.Fields[key] = value
}

// Copy returns a food whose Fields map can be changed without affecting f
func (f Food) Copy() Food {
	copied := f
	copied.Fields = make(map[string]interface{}, len(f.Fields))
	for key, value := range f.Fields {
		copied.Fields[key] = value
	}

	return copied
}

// MarshalJSON flattens the typed fields and the free-form ones into one object
func (f Food) MarshalJSON() ([]byte, error) {
	document := make(map[string]interface{}, len(f.Fields)+2)
	for key, value := range f.Fields {
		document[key] = value
	}
	if !f.ID.IsZero() {
		document["_id"] = f.ID.Hex()
	}
	if f.Status != "" {
		document["status"] = f.Status
	}

	return json.Marshal(document)
}

// UnmarshalJSON accepts any JSON object. "_id" is only kept when it is a
// well-formed identifier, and "status" has to be a string
func (f *Food) UnmarshalJSON(data []byte) error {
	var document map[string]interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return err
	}

	f.ID = primitive.NilObjectID
	if rawID, ok := document["_id"].(string); ok {
		if id, err := primitive.ObjectIDFromHex(rawID); err == nil {
			f.ID = id
		}
	}
	delete(document, "_id")

	f.Status = ""
	if rawStatus, ok := document["status"]; ok && rawStatus != nil {
		status, ok := rawStatus.(string)
		if !ok {
			return errors.Errorf("status must be a string, got %v", rawStatus)
		}
		f.Status = FoodStatus(status)
	}
	delete(document, "status")

	f.Fields = document
	return nil
}

// FoodUpdate holds the fields that can be overwritten on an existing food.
// All three are always written, matching a full replace of those fields,
// and their values are stored as sent
type FoodUpdate struct {
	FoodName       interface{} `json:"foodName" bson:"foodName"`
	Quantity       interface{} `json:"quantity" bson:"quantity"`
	PickupLocation interface{} `json:"pickupLocation" bson:"pickupLocation"`
}
