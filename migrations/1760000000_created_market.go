package migrations

import (
	"nightmarket/internal/store/pbstore"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		return pbstore.EnsureCollections(app)
	}, func(app core.App) error {
		return pbstore.DropCollections(app)
	})
}
