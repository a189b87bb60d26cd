package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName returns the dialect name, defaulting to sqlite.
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// dayBucketExpr builds a YYYY-MM-DD bucket expression for a timestamp
// column, compatible with sqlite and postgres.
func dayBucketExpr(db *gorm.DB, column string) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "to_char(" + column + ", 'YYYY-MM-DD')"
	default:
		return "strftime('%Y-%m-%d', " + column + ")"
	}
}
