package parser

import (
	"context"

	"fjacquet/mis-parser/internal/models"
)

// Parser turns the object behind a locator into a canonical table.
type Parser interface {
	// ParseFile fetches the input, assembles archives when needed and
	// normalizes the result. It returns either a fully normalized table or
	// exactly one error from the parsererror package (or the retrieval error
	// of the object store, unchanged).
	ParseFile(ctx context.Context, locator string) (*models.Table, error)

	// Name is the source name the parser was built for.
	Name() string
}
