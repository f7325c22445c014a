package core

import "github.com/google/uuid"

// NewID generates a unique identifier for documents and stored records.
func NewID() string { return uuid.NewString() }
