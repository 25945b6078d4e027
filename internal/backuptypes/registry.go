// Package backuptypes provides backup type implementations.
// Import this package to register all built-in backup types.
package backuptypes

import (
	// Import all backup types for self-registration
	_ "github.com/shyim/db-auto-backup/internal/backuptypes/mysql"
	_ "github.com/shyim/db-auto-backup/internal/backuptypes/postgres"
)
