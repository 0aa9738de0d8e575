package ports

import (
	"context"

	"gopanel/domain/survey"
)

// ResponseReaderPort provides read-only access to collected survey
// responses. Implementations filter out unusable rows (blank scales,
// non-numeric answers) at the boundary so analyzers never see them.
type ResponseReaderPort interface {
	ReadResponses(ctx context.Context) ([]survey.Response, error)
}
