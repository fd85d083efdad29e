package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const pgUniqueViolation = "23505"

type filterKind int

const (
	filterText filterKind = iota
	filterInt
	filterBool
)

type filterField struct {
	column string
	kind   filterKind
}

// listSpec описывает, по каким колонкам сущность разрешает поиск, фильтрацию и сортировку.
type listSpec struct {
	searchColumns []string
	filterFields  map[string]filterField
	sortFields    map[string]string
	defaultOrder  []string
}

func parseFilterValue(kind filterKind, raw string) (interface{}, bool) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case filterInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, err == nil
	case filterBool:
		v, err := strconv.ParseBool(raw)
		return v, err == nil
	}
	return raw, raw != ""
}

// applyListFilter добавляет поиск и фильтры. Неизвестные ключи и неразборчивые значения пропускаются.
func applyListFilter(builder sq.SelectBuilder, filter types.Filter, spec listSpec) sq.SelectBuilder {
	if filter.Search != "" && len(spec.searchColumns) > 0 {
		pattern := "%" + filter.Search + "%"
		conditions := make(sq.Or, 0, len(spec.searchColumns))
		for _, col := range spec.searchColumns {
			conditions = append(conditions, sq.ILike{col: pattern})
		}
		builder = builder.Where(conditions)
	}

	for _, key := range filter.FilterKeys() {
		field, ok := spec.filterFields[key]
		if !ok {
			continue
		}
		var values []interface{}
		for _, item := range filter.Values(key) {
			if v, ok := parseFilterValue(field.kind, item); ok {
				values = append(values, v)
			}
		}
		switch len(values) {
		case 0:
			continue
		case 1:
			builder = builder.Where(sq.Eq{field.column: values[0]})
		default:
			builder = builder.Where(sq.Eq{field.column: values})
		}
	}
	return builder
}

func applyListOrder(builder sq.SelectBuilder, filter types.Filter, spec listSpec) sq.SelectBuilder {
	var order []string
	for _, field := range filter.SortFields() {
		column, ok := spec.sortFields[field]
		if !ok {
			continue
		}
		direction := "ASC"
		if strings.EqualFold(filter.Sort[field], "desc") {
			direction = "DESC"
		}
		order = append(order, column+" "+direction)
	}
	if len(order) == 0 {
		order = spec.defaultOrder
	}
	return builder.OrderBy(order...)
}

func applyPagination(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if !filter.WithPagination || filter.Limit <= 0 {
		return builder
	}
	return builder.Limit(uint64(filter.Limit)).Offset(uint64(max(filter.Offset, 0)))
}

func countRows(ctx context.Context, q querier, builder sq.SelectBuilder) (uint64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка построения запроса подсчёта: %w", err)
	}
	var total uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// countWhere считает строки таблицы по условию, например детей узла или ссылки из таблицы связей.
func countWhere(ctx context.Context, q querier, table string, cond sq.Eq) (uint64, error) {
	return countRows(ctx, q, psql.Select("COUNT(*)").From(table).Where(cond))
}

func collectIDs(ctx context.Context, q querier, builder sq.SelectBuilder) ([]uint64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uint64])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}

func collectStrings(ctx context.Context, q querier, builder sq.SelectBuilder) ([]string, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// replaceLinks заменяет связи owner -> ids целиком: удаление всех строк и вставка через COPY.
func replaceLinks(ctx context.Context, tx pgx.Tx, table, ownerColumn, targetColumn string, ownerID uint64, ids []uint64) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, ownerColumn), ownerID); err != nil {
		return fmt.Errorf("ошибка очистки связей %s: %w", table, err)
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(ids))
	for i, id := range ids {
		rows[i] = []interface{}{ownerID, id}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, []string{ownerColumn, targetColumn}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("ошибка записи связей %s: %w", table, mapWriteError(err))
	}
	return nil
}

func uniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// mapWriteError переводит нарушения ограничений Postgres в доменные ошибки.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: значение уже занято (%s)", apperrors.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: ссылка на несуществующую запись (%s)", apperrors.ErrBadRequest, pgErr.ConstraintName)
		}
	}
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}
