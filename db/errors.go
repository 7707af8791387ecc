package db

import "fmt"

// InvalidIDError is an error used to encode when a given ID
// is not a well-formed document identifier
type InvalidIDError struct {
	ID string
}

// NewInvalidIDError constructs a new InvalidIDError
func NewInvalidIDError(id string) *InvalidIDError {
	return &InvalidIDError{
		ID: id,
	}
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("'%s' is not a valid ID", e.ID)
}

// NotFoundError is an error used to encode when an ID isn't found
// for GetSingle, Update, Request, and Delete operations
type NotFoundError struct {
	ID string
}

// NewNotFoundError constructs a new NotFoundError
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{
		ID: id,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object with ID '%s' not found in the database",
		e.ID)
}
