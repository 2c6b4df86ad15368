// Package drivers registers the built-in database adapters.
package drivers

import (
	"github.com/Rrens/text-to-sql-chat/internal/datasource"
	"github.com/Rrens/text-to-sql-chat/internal/datasource/mysql"
	"github.com/Rrens/text-to-sql-chat/internal/datasource/postgres"
	"github.com/Rrens/text-to-sql-chat/internal/datasource/sqlite"
)

// NewRouter returns a router with sqlite, postgres and mysql registered
func NewRouter() *datasource.Router {
	router := datasource.NewRouter()
	router.RegisterAdapter("sqlite", sqlite.NewAdapter)
	router.RegisterAdapter("postgres", postgres.NewAdapter)
	router.RegisterAdapter("mysql", mysql.NewAdapter)
	return router
}
