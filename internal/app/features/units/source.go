// internal/app/features/units/source.go
package units

import (
	"context"

	unitstore "github.com/dalemusser/compoundhub/internal/app/store/units"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// projectSource binds the unit store to one project and one search field.
type projectSource struct {
	store     *unitstore.Store
	projectID primitive.ObjectID
	field     string
}

func (s projectSource) Page(ctx context.Context, after string, limit int) ([]models.Unit, string, error) {
	return s.store.Page(ctx, s.projectID, after, limit)
}

func (s projectSource) Search(ctx context.Context, term string, limit int) ([]models.Unit, error) {
	return s.store.Search(ctx, s.projectID, s.field, term, limit)
}
