// Package dsn builds database connection strings from the configuration.
package dsn

import (
	"fmt"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
)

// Create builds the mysql DSN. Extras is appended verbatim as the query
// string, e.g. "parseTime=true".
func Create(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
		cfg.DB.Extras,
	)
}
