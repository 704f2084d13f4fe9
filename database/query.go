package database

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/errs"
)

// Page selects a window of a list. A zero Page returns every row.
type Page struct {
	Limit   int
	Offset  int
	Enabled bool
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if !p.Enabled {
		return q
	}
	return q.Limit(p.Limit).Offset(p.Offset)
}

// listPage counts q when paging is enabled and loads the requested window into dest.
// The returned total equals the number of loaded rows when paging is disabled.
// Scopes (preloads, computed columns) apply to the load only.
func listPage[T any](q *gorm.DB, page Page, order string, dest *[]T, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if page.Enabled {
		if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return 0, err
		}
	}
	if err := page.apply(q.Scopes(scopes...).Order(order)).Find(dest).Error; err != nil {
		return 0, err
	}
	if !page.Enabled {
		total = int64(len(*dest))
	}
	return total, nil
}

// findAllByIDs loads every record whose id is in ids.
// A missing id is reported as a validation error on field.
func findAllByIDs[T any](tx *gorm.DB, ids []uint, field string) ([]T, error) {
	unique := dedupe(ids)
	records := make([]T, 0, len(unique))
	if len(unique) == 0 {
		return records, nil
	}

	var found []uint
	if err := tx.Model(new(T)).Where("id IN ?", unique).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		present := make(map[uint]bool, len(found))
		for _, id := range found {
			present[id] = true
		}
		for _, id := range unique {
			if !present[id] {
				return nil, errs.NewInvalidFieldError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
			}
		}
	}

	if err := tx.Where("id IN ?", unique).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// replaceMany swaps the many-to-many association of owner for the records named by ids.
// A nil ids leaves the association untouched.
func replaceMany[T any](tx *gorm.DB, owner any, association, field string, ids *[]uint) error {
	if ids == nil {
		return nil
	}
	records, err := findAllByIDs[T](tx, *ids, field)
	if err != nil {
		return err
	}
	assoc := tx.Model(owner).Association(association)
	if len(records) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(records)
}

// mustExist reports a validation error on field when no row of T has the id.
func mustExist[T any](tx *gorm.DB, id uint, field string) error {
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewInvalidFieldError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// simpleRepo holds the CRUD shared by entities without relations.
type simpleRepo[T any] struct {
	db *gorm.DB
}

func (r simpleRepo[T]) FindAll(ctx context.Context, page Page) ([]T, int64, error) {
	var items []T
	total, err := listPage(r.db.WithContext(ctx).Model(new(T)), page, "id", &items)
	return items, total, err
}

func (r simpleRepo[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r simpleRepo[T]) Add(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r simpleRepo[T]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r simpleRepo[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
