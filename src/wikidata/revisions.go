package wikidata

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/perf"
)

func insertRevision(ctx context.Context, tx pgx.Tx, page *models.Page) error {
	hash, err := ContentHash(page.Content)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`
		INSERT INTO wiki_revision (id, page_id, title, content, version, author_id, content_hash, created_at)
		VALUES                    ($1, $2,      $3,    $4,      $5,      $6,        $7,           $8        )
		`,
		uuid.New(), page.ID, page.Title, page.Content, page.Version, page.AuthorID, hash, page.UpdatedAt,
	)
	if err != nil {
		return oops.New(err, "failed to insert revision")
	}
	return nil
}

// RevisionSummary is a revision without its content, with the name of
// whoever saved it.
type RevisionSummary struct {
	ID          uuid.UUID  `db:"id"`
	PageID      uuid.UUID  `db:"page_id"`
	Title       string     `db:"title"`
	Version     int        `db:"version"`
	AuthorID    *uuid.UUID `db:"author_id"`
	AuthorName  *string    `db:"author_name"`
	ContentHash string     `db:"content_hash"`
	CreatedAt   time.Time  `db:"created_at"`
}

// FetchRevisions lists a page's revisions, newest first. It works for
// deleted pages too.
func FetchRevisions(ctx context.Context, dbConn db.ConnOrTx, pageID uuid.UUID) ([]*RevisionSummary, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch revisions").End()

	revisions, err := db.Query[RevisionSummary](ctx, dbConn,
		`
		SELECT
			rev.id, rev.page_id, rev.title, rev.version, rev.author_id,
			author.display_name AS author_name,
			rev.content_hash, rev.created_at
		FROM
			wiki_revision AS rev
			LEFT JOIN wiki_user AS author ON author.id = rev.author_id
		WHERE rev.page_id = $1
		ORDER BY rev.version DESC
		`,
		pageID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch revisions")
	}
	return revisions, nil
}

// FetchRevision returns db.NotFound if the page never had that version.
func FetchRevision(ctx context.Context, dbConn db.ConnOrTx, pageID uuid.UUID, version int) (*models.Revision, error) {
	rev, err := db.QueryOne[models.Revision](ctx, dbConn,
		`
		SELECT $columns
		FROM wiki_revision
		WHERE page_id = $1 AND version = $2
		`,
		pageID, version,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch revision")
	}
	return rev, nil
}

func CountRevisions(ctx context.Context, dbConn db.ConnOrTx, pageID uuid.UUID) (int, error) {
	count, err := db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM wiki_revision WHERE page_id = $1`,
		pageID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to count revisions")
	}
	return count, nil
}
