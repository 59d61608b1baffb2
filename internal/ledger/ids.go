package ledger

import "github.com/google/uuid"

// IDGenerator supplies unique identifiers for new bills, participants and items.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string { return f() }

// UUIDGenerator generates random (version 4) UUID strings.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)
