package mcpsrv

import (
	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/internal/config"
	"github.com/usestring/schemafill/pkg/query"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config  *config.Config
	Schemas *cache.SchemaCache
	Query   *query.Engine
}
