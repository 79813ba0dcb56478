package postgres

import (
	"context"
	"errors"
	"fmt"

	"alianca-go/internal/gateway"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway runs table operations through gorm. Rows are decoded with the
// gorm column tags of the destination structs.
type Gateway struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Select(ctx context.Context, table string, query gateway.Query, dest any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := query.Validate(); err != nil {
		return err
	}

	tx := applyFilters(g.db.WithContext(ctx).Table(table), query.Filters)
	for _, order := range query.Orders {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	if err := tx.Find(dest).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (g *Gateway) Insert(ctx context.Context, table string, row any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (g *Gateway) Upsert(ctx context.Context, table string, row any, conflictColumns ...string) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		if err := gateway.ValidateIdentifier(name); err != nil {
			return err
		}
		columns = append(columns, clause.Column{Name: name})
	}

	err := g.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{Columns: columns, UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (g *Gateway) Update(ctx context.Context, table string, filters []gateway.Filter, patch map[string]any) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}
	for column := range patch {
		if err := gateway.ValidateIdentifier(column); err != nil {
			return 0, err
		}
	}
	if len(patch) == 0 {
		return 0, nil
	}

	result := applyFilters(g.db.WithContext(ctx).Table(table), filters).Updates(patch)
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}

func (g *Gateway) Delete(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}

	result := applyFilters(g.db.WithContext(ctx).Table(table), filters).Delete(map[string]any{})
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}

func (g *Gateway) Count(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return 0, err
	}
	if err := gateway.ValidateFilters(filters); err != nil {
		return 0, err
	}

	var count int64
	if err := applyFilters(g.db.WithContext(ctx).Table(table), filters).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func checkMutation(table string, filters []gateway.Filter) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if len(filters) == 0 {
		return gateway.ErrMissingFilters
	}
	return gateway.ValidateFilters(filters)
}

func applyFilters(tx *gorm.DB, filters []gateway.Filter) *gorm.DB {
	for _, filter := range filters {
		column := clause.Column{Name: filter.Column}
		switch filter.Op {
		case gateway.OpEq:
			tx = tx.Where(clause.Eq{Column: column, Value: filter.Value})
		case gateway.OpNeq:
			tx = tx.Where(clause.Neq{Column: column, Value: filter.Value})
		case gateway.OpGte:
			tx = tx.Where(clause.Gte{Column: column, Value: filter.Value})
		case gateway.OpLte:
			tx = tx.Where(clause.Lte{Column: column, Value: filter.Value})
		case gateway.OpIn:
			tx = tx.Where(clause.IN{Column: column, Values: filter.Value.([]any)})
		}
	}
	return tx
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", gateway.ErrConflict, err)
	}
	return err
}
