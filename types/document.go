package types

// Document is a schema-less record, used for the collections
// whose shape is decided entirely by the client (requests, popular items).
// Identifiers are stored under "_id"
type Document map[string]interface{}
