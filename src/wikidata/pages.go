package wikidata

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/parsing"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/utils"
	"golang.org/x/crypto/blake2b"
)

const (
	MaxTitleLength   = 255
	MaxExcerptLength = 240
	MaxSearchResults = 50
)

var (
	ErrSlugTaken = errors.New("a page with that address already exists")

	reSlug    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	reTagPath = regexp.MustCompile(`^[a-z0-9-]+(/[a-z0-9-]+)*$`)
	reDashes  = regexp.MustCompile(`-{2,}`)
)

// InputError is a problem with what the user submitted, safe to show them.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// PageInput is everything an editor submits for a page.
type PageInput struct {
	Title       string
	Slug        string
	TagPath     string
	Content     []blocks.Block
	Excerpt     string
	BannerImage string
	Metadata    map[string]string
}

type SaveResult struct {
	Page                *models.Page
	IsFirstContribution bool
}

// Normalize trims and fills in the input, then checks it. Content is cleaned
// and validated; a *blocks.ValidationError is returned for bad content and an
// *InputError for anything else.
func (in PageInput) Normalize() (PageInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, &InputError{"Pages need a title."}
	}
	if len(in.Title) > MaxTitleLength {
		return in, &InputError{"That title is too long."}
	}

	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.Slug == "" {
		in.Slug = SlugFromTitle(in.Title)
	}
	if !reSlug.MatchString(in.Slug) {
		return in, &InputError{"Page addresses may only contain lowercase letters, numbers and dashes."}
	}

	in.TagPath = NormalizeTagPath(in.TagPath)
	if !reTagPath.MatchString(in.TagPath) {
		return in, &InputError{"Choose a category for the page."}
	}

	if in.Content == nil {
		in.Content = blocks.DefaultDocument()
	}
	in.Content = blocks.Clean(in.Content)
	if err := blocks.Validate(in.Content); err != nil {
		return in, err
	}

	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.Excerpt == "" {
		in.Excerpt = DeriveExcerpt(in.Content)
	}
	in.Excerpt = utils.Truncate(in.Excerpt, MaxExcerptLength)

	in.BannerImage = strings.TrimSpace(in.BannerImage)
	if in.BannerImage != "" && !parsing.SafeURL(in.BannerImage) {
		in.BannerImage = ""
	}

	metadata := make(map[string]string, len(in.Metadata))
	for k, v := range in.Metadata {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			metadata[k] = v
		}
	}
	in.Metadata = metadata

	return in, nil
}

// SlugFromTitle keeps the ASCII letters and digits of a title, joined by
// dashes.
func SlugFromTitle(title string) string {
	var b strings.Builder
	for _, r := range parsing.Slugify(title) {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(reDashes.ReplaceAllString(b.String(), "-"), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

func NormalizeTagPath(tagPath string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(tagPath), "/"))
}

// DeriveExcerpt is the plain text of the first text block with any text in it.
func DeriveExcerpt(content []blocks.Block) string {
	for _, b := range content {
		if c, ok := b.Data.(blocks.Content); ok {
			if text := parsing.PlainText(c.Text); text != "" {
				return utils.Truncate(text, MaxExcerptLength)
			}
		}
	}
	return ""
}

// ContentHash identifies a document's exact content, for revisions and ETags.
func ContentHash(content []blocks.Block) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", oops.New(err, "failed to encode page content")
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

type PagesQuery struct {
	IDs     []uuid.UUID
	TagPath string // exact match; empty for all
	Search  string // case-insensitive match on title or excerpt

	// Include pages in categories below TagPath.
	IncludeSubcategories bool

	Limit, Offset int
}

// FetchPages returns page summaries, most recently updated first.
func FetchPages(ctx context.Context, dbConn db.ConnOrTx, q PagesQuery) ([]*models.PageSummary, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch pages").End()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM wiki_page
		WHERE
			TRUE
	`)
	if len(q.IDs) > 0 {
		qb.Add(`AND id = ANY($?)`, q.IDs)
	}
	if q.TagPath != "" {
		tagPath := NormalizeTagPath(q.TagPath)
		if q.IncludeSubcategories {
			qb.Add(`AND (tag_path = $? OR tag_path LIKE $?)`, tagPath, escapeLike(tagPath)+"/%")
		} else {
			qb.Add(`AND tag_path = $?`, tagPath)
		}
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		qb.Add(`AND (title ILIKE $? OR excerpt ILIKE $?)`, pattern, pattern)
	}
	qb.Add(`ORDER BY updated_at DESC, id`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	pages, err := db.Query[models.PageSummary](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch pages")
	}
	return pages, nil
}

func CountPages(ctx context.Context, dbConn db.ConnOrTx, tagPath string) (int, error) {
	count, err := db.QueryOneScalar[int](ctx, dbConn,
		`
		---- Count pages
		SELECT COUNT(*) FROM wiki_page WHERE tag_path = $1
		`,
		NormalizeTagPath(tagPath),
	)
	if err != nil {
		return 0, oops.New(err, "failed to count pages")
	}
	return count, nil
}

// FetchRecentPages returns the newest pages in a category and its
// subcategories, or across the whole wiki when tagPath is empty.
func FetchRecentPages(ctx context.Context, dbConn db.ConnOrTx, tagPath string, limit int) ([]*models.PageSummary, error) {
	return FetchPages(ctx, dbConn, PagesQuery{
		TagPath:              tagPath,
		IncludeSubcategories: true,
		Limit:                utils.Clamp(1, limit, blocks.MaxRecentPagesLimit),
	})
}

// FetchPagesByIDs returns the pages in the order the ids were given. Ids that
// don't parse or don't exist are skipped.
func FetchPagesByIDs(ctx context.Context, dbConn db.ConnOrTx, ids []string) ([]*models.PageSummary, error) {
	var parsed []uuid.UUID
	for _, id := range ids {
		if u, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
			parsed = append(parsed, u)
		}
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	pages, err := FetchPages(ctx, dbConn, PagesQuery{IDs: parsed})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.PageSummary, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}

	result := make([]*models.PageSummary, 0, len(pages))
	for _, id := range parsed {
		if p, ok := byID[id]; ok {
			result = append(result, p)
			delete(byID, id)
		}
	}
	return result, nil
}

func SearchPages(ctx context.Context, dbConn db.ConnOrTx, search string, limit int) ([]*models.PageSummary, error) {
	if strings.TrimSpace(search) == "" {
		return nil, nil
	}
	return FetchPages(ctx, dbConn, PagesQuery{
		Search: search,
		Limit:  utils.Clamp(1, limit, MaxSearchResults),
	})
}

// FetchPage returns db.NotFound if there is no such page.
func FetchPage(ctx context.Context, dbConn db.ConnOrTx, tagPath, slug string) (*models.Page, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch page").End()

	page, err := db.QueryOne[models.Page](ctx, dbConn,
		`
		SELECT $columns
		FROM wiki_page
		WHERE tag_path = $1 AND slug = $2
		`,
		NormalizeTagPath(tagPath), strings.ToLower(slug),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch page")
	}
	return page, nil
}

func FetchPageByID(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) (*models.Page, error) {
	page, err := db.QueryOne[models.Page](ctx, dbConn,
		`
		SELECT $columns
		FROM wiki_page
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch page")
	}
	return page, nil
}

// CreatePage stores a new page and its first revision in one transaction.
func CreatePage(ctx context.Context, dbConn db.ConnOrTx, author *models.User, input PageInput) (*SaveResult, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	first, err := isFirstContribution(ctx, tx, author)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	page := &models.Page{
		ID:          uuid.New(),
		Slug:        input.Slug,
		Title:       input.Title,
		TagPath:     input.TagPath,
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		BannerImage: input.BannerImage,
		Metadata:    input.Metadata,
		Version:     1,
		AuthorID:    authorID(author),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = tx.Exec(ctx,
		`
		INSERT INTO wiki_page (id, slug, title, tag_path, content, excerpt, banner_image, metadata, version, author_id, created_at, updated_at)
		VALUES                ($1, $2,   $3,    $4,       $5,      $6,      $7,           $8,       $9,      $10,       $11,        $12       )
		`,
		page.ID, page.Slug, page.Title, page.TagPath, page.Content, page.Excerpt, page.BannerImage, page.Metadata,
		page.Version, page.AuthorID, page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, oops.New(err, "failed to insert page")
	}

	if err := insertRevision(ctx, tx, page); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit new page")
	}
	return &SaveResult{Page: page, IsFirstContribution: first}, nil
}

// UpdatePage replaces a page wholesale and records a revision. Concurrent
// saves are not merged; the last one to commit wins.
func UpdatePage(ctx context.Context, dbConn db.ConnOrTx, editor *models.User, id uuid.UUID, input PageInput) (*SaveResult, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	first, err := isFirstContribution(ctx, tx, editor)
	if err != nil {
		return nil, err
	}

	page, err := db.QueryOne[models.Page](ctx, tx,
		`
		UPDATE wiki_page
		SET
			slug = $2, title = $3, tag_path = $4, content = $5, excerpt = $6,
			banner_image = $7, metadata = $8,
			version = version + 1,
			updated_at = GREATEST($9, created_at)
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		input.Slug, input.Title, input.TagPath, input.Content, input.Excerpt,
		input.BannerImage, input.Metadata,
		time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, oops.New(err, "failed to update page")
	}

	// Revisions record who saved, not who created the page.
	revision := *page
	revision.AuthorID = authorID(editor)
	if err := insertRevision(ctx, tx, &revision); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit page update")
	}
	return &SaveResult{Page: page, IsFirstContribution: first}, nil
}

// DeletePage removes the live page. Its revisions stay.
func DeletePage(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) error {
	tag, err := dbConn.Exec(ctx, `DELETE FROM wiki_page WHERE id = $1`, id)
	if err != nil {
		return oops.New(err, "failed to delete page")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

// FetchAssetPriceAddresses lists every resource address used by an asset
// price block on any page.
func FetchAssetPriceAddresses(ctx context.Context, dbConn db.ConnOrTx) ([]string, error) {
	addresses, err := db.QueryScalar[string](ctx, dbConn,
		`
		---- Fetch asset price addresses
		SELECT DISTINCT block->>'resourceAddress'
		FROM
			wiki_page,
			jsonb_path_query(content, 'strict $.** ? (@.type == "assetPrice")') AS block
		WHERE block->>'resourceAddress' <> ''
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch asset price addresses")
	}
	slices.Sort(addresses)
	return addresses, nil
}

func isFirstContribution(ctx context.Context, tx db.ConnOrTx, user *models.User) (bool, error) {
	if user == nil {
		return false, nil
	}
	hasContributed, err := db.QueryOneScalar[bool](ctx, tx,
		`
		---- Check for earlier contributions
		SELECT EXISTS (SELECT 1 FROM wiki_revision WHERE author_id = $1)
		`,
		user.ID,
	)
	if err != nil {
		return false, oops.New(err, "failed to check for earlier contributions")
	}
	return !hasContributed, nil
}

func authorID(u *models.User) *uuid.UUID {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
