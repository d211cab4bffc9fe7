package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortField orders results by a single column.
type SortField struct {
	Column string
	Desc   bool
}

// FindOptions is the store-native form of a list query's sort, projection
// and window. Zero values mean "no constraint".
type FindOptions struct {
	Sort   []SortField
	Select []string
	Skip   int
	Limit  int
}

// ApplyFindOptions applies sort, select, skip and limit to a GORM query
func ApplyFindOptions(opts FindOptions) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, s := range opts.Sort {
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: s.Column},
				Desc:   s.Desc,
			})
		}
		if len(opts.Select) > 0 {
			db = db.Select(opts.Select)
		}
		if opts.Skip > 0 {
			db = db.Offset(opts.Skip)
		}
		if opts.Limit > 0 {
			db = db.Limit(opts.Limit)
		}
		return db
	}
}
