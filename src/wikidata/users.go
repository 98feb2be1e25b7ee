package wikidata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/utils"
)

const MaxUserSearchResults = 20

// UpsertUser records a signed-in user, refreshing their name and address
// from the login token.
func UpsertUser(ctx context.Context, dbConn db.ConnOrTx, u models.User) (*models.User, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Upsert user").End()

	now := time.Now().UTC()
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		INSERT INTO wiki_user (id, display_name, radix_address, is_admin, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			radix_address = EXCLUDED.radix_address,
			is_admin = EXCLUDED.is_admin,
			last_seen_at = EXCLUDED.last_seen_at
		RETURNING $columns
		`,
		u.ID, strings.TrimSpace(u.DisplayName), strings.TrimSpace(u.RadixAddress), u.IsAdmin, now,
	)
	if err != nil {
		return nil, oops.New(err, "failed to save user")
	}
	return user, nil
}

func FetchUser(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`SELECT $columns FROM wiki_user WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch user")
	}
	return user, nil
}

// SearchUsers matches a name prefix or any part of a wallet address.
func SearchUsers(ctx context.Context, dbConn db.ConnOrTx, search string, limit int) ([]*models.User, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, nil
	}
	users, err := db.Query[models.User](ctx, dbConn,
		`
		---- Search users
		SELECT $columns
		FROM wiki_user
		WHERE
			LOWER(display_name) LIKE LOWER($1) || '%'
			OR radix_address ILIKE '%' || $1 || '%'
		ORDER BY display_name, radix_address
		LIMIT $2
		`,
		escapeLike(search), utils.Clamp(1, limit, MaxUserSearchResults),
	)
	if err != nil {
		return nil, oops.New(err, "failed to search users")
	}
	return users, nil
}
