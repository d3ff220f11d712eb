package screenplay

import "gorm.io/gorm"

// Live excludes soft-deleted rows of the statement's own table.
func Live(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// LiveIn excludes soft-deleted rows of a joined table.
func LiveIn(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_deleted = ?", false)
	}
}

// Page applies skip/limit. A non-positive limit means no limit.
func Page(skip, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}
