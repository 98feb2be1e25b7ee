/*
Package db has the query helpers for the wiki's Postgres database. Queries are
plain SQL; results are mapped to Go types with pgx.

Arguments use $1, $2 placeholders and are passed straight to pgx. Use Postgres
arrays instead of IN for slices:

	pages, err := db.Query[models.Page](ctx, conn,
		`
		SELECT $columns
		FROM wiki_page
		WHERE id = ANY($1)
		`,
		ids,
	)

Struct destinations are filled by column name from their `db` tags. The $columns
placeholder expands to those columns, and $columns{p} prefixes each with "p.":

	type Page struct {
		ID    uuid.UUID `db:"id"`
		Title string    `db:"title"`
	}
	// SELECT $columns{page} FROM wiki_page AS page
	// becomes
	// SELECT page.id, page.title FROM wiki_page AS page

Every exported field of a destination struct needs a matching column, so fields
that are not stored are tagged `db:"-"`.

Name a query by starting it with a "---- Name" line; the perf tracer reports it
under that name.
*/
package db
