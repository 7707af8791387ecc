package types

// ErrorResponse is the generic error JSON shape returned by the API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuccessResponse is returned by routes that confirm a mutation
// instead of returning the affected document
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// InsertResult acknowledges a newly inserted document
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// DeleteResult reports how many documents a delete removed
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
