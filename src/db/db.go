package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/*
A general error to be used when no results are found. This is the error returned
by QueryOne, and can generally be used by other database helpers that fetch a single
result but find nothing.
*/
var NotFound = errors.New("not found")

/*
Performs a SQL query and returns a slice of all the result rows. You must explicitly
provide the type argument; it is how the results are mapped and it cannot be inferred.

Struct types are filled by column name using their `db` tags, and may use the $columns
placeholder. Any other type is scanned directly from a single-column result.
*/
func Query[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]*T, error) {
	rows, err := conn.Query(ctx, compileQuery(query, typeOf[T]()), args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, rowToAddr[T])
}

/*
Identical to Query, but returns only the first result row. If there are no
rows in the result set, returns NotFound.
*/
func QueryOne[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (*T, error) {
	rows, err := conn.Query(ctx, compileQuery(query, typeOf[T]()), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, NotFound
	}
	return rowToAddr[T](rows)
}

// Identical to Query, but returns values instead of pointers. More convenient
// for primitive types.
func QueryScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]T, error) {
	rows, err := conn.Query(ctx, compileQuery(query, typeOf[T]()), args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[T])
}

// Identical to QueryScalar, but returns only the first value. If there are no
// rows in the result set, returns NotFound.
func QueryOneScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (T, error) {
	var zero T
	rows, err := conn.Query(ctx, compileQuery(query, typeOf[T]()), args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, NotFound
	}
	return pgx.RowTo[T](rows)
}

func MustQueryOneScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) T {
	result, err := QueryOneScalar[T](ctx, conn, query, args...)
	if err != nil {
		panic(err)
	}
	return result
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func rowToAddr[T any](row pgx.CollectableRow) (*T, error) {
	if isRowStruct(typeOf[T]()) {
		return pgx.RowToAddrOfStructByName[T](row)
	}
	return pgx.RowToAddrOf[T](row)
}

// Structs that pgx scans as a single value rather than column by column.
var scalarStructs = map[reflect.Type]bool{
	reflect.TypeOf(time.Time{}): true,
	reflect.TypeOf(uuid.UUID{}): true,
}

func isRowStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && !scalarStructs[t]
}

var reColumnsPlaceholder = regexp.MustCompile(`\$columns({(.*?)})?`)

func compileQuery(query string, destType reflect.Type) string {
	match := reColumnsPlaceholder.FindStringSubmatch(query)
	if match == nil {
		return query
	}
	if !isRowStruct(destType) {
		panic(fmt.Errorf("$columns can only be used when querying into a struct, got %v", destType))
	}

	columns := getColumnNames(destType, match[2])
	return reColumnsPlaceholder.ReplaceAllString(query, strings.Join(columns, ", "))
}

// getColumnNames lists the `db` tags of a struct's exported fields, in field
// order, optionally qualified with a table prefix.
func getColumnNames(destType reflect.Type, prefix string) []string {
	var names []string
	for _, field := range reflect.VisibleFields(destType) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		names = append(names, name)
	}
	return names
}
