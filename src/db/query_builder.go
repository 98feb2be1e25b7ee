package db

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles SQL with optional clauses. Each `$?` in an added
// chunk becomes the next positional argument:
//
//	qb.Add(`WHERE tag_path = $?`, tagPath)     // WHERE tag_path = $1
//	qb.Add(`AND title ILIKE $?`, "%"+q+"%")    // AND title ILIKE $2
type QueryBuilder struct {
	sql  strings.Builder
	args []any
}

func (qb *QueryBuilder) Add(sql string, args ...any) {
	numPlaceholders := strings.Count(sql, "$?")
	if numPlaceholders != len(args) {
		panic(fmt.Errorf("cannot add chunk to query; expected %d arguments but got %d", numPlaceholders, len(args)))
	}

	for _, arg := range args {
		qb.args = append(qb.args, arg)
		sql = strings.Replace(sql, "$?", fmt.Sprintf("$%d", len(qb.args)), 1)
	}

	qb.sql.WriteString(sql)
	qb.sql.WriteString("\n")
}

func (qb *QueryBuilder) String() string {
	return qb.sql.String()
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}
