package tools

import (
	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/internal/config"
	"github.com/usestring/schemafill/pkg/query"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config  *config.Config
	Schemas *cache.SchemaCache
	Query   *query.Engine
}

// NewDeps builds tool dependencies from configuration.
func NewDeps(cfg *config.Config) (*Deps, error) {
	schemas, err := cache.NewSchemaCache(cfg.SchemaCacheSize)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Config:  cfg,
		Schemas: schemas,
		Query:   query.NewEngine(),
	}, nil
}
