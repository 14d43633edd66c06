package repository

import (
	"escape_room_backend/internal/util"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// findOne returns the single row matching the filter, nil when nothing
// matches, and util.ErrAmbiguousResult when more than one row matches.
func findOne[T any](db *gorm.DB, query interface{}, args ...interface{}) (*T, error) {
	var rows []T
	if err := db.Where(query, args...).Limit(2).Find(&rows).Error; err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		var zero T
		return nil, fmt.Errorf("%w: more than one %T matched", util.ErrAmbiguousResult, zero)
	}
}

func findMany[T any](db *gorm.DB, query interface{}, args ...interface{}) ([]T, error) {
	var rows []T
	if err := db.Where(query, args...).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// findEdge returns the first row ordered by key, or the last one when desc is
// set. Nil when nothing matches.
func findEdge[T any](db *gorm.DB, key string, desc bool, query interface{}, args ...interface{}) (*T, error) {
	var rows []T
	err := db.Where(query, args...).
		Order(clause.OrderByColumn{Column: clause.Column{Name: key}, Desc: desc}).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func findFirst[T any](db *gorm.DB, key string, query interface{}, args ...interface{}) (*T, error) {
	return findEdge[T](db, key, false, query, args...)
}

func findLast[T any](db *gorm.DB, key string, query interface{}, args ...interface{}) (*T, error) {
	return findEdge[T](db, key, true, query, args...)
}

// forUpdate adds SELECT ... FOR UPDATE. Dialects without row locks (sqlite)
// drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
