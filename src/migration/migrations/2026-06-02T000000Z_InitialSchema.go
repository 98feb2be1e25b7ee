package migrations

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/radixwiki/wiki/src/migration/types"
	"github.com/radixwiki/wiki/src/oops"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Creates users, pages, revisions and uploaded assets"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`
		CREATE TABLE wiki_user (
			id UUID NOT NULL PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			radix_address VARCHAR(255) NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			last_seen_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX wiki_user_display_name ON wiki_user (LOWER(display_name));
		`,
	)
	if err != nil {
		return oops.New(err, "failed to create user table")
	}

	_, err = tx.Exec(ctx,
		`
		CREATE TABLE wiki_page (
			id UUID NOT NULL PRIMARY KEY,
			slug VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			tag_path VARCHAR(255) NOT NULL,
			content JSONB NOT NULL DEFAULT '[]',
			excerpt TEXT NOT NULL DEFAULT '',
			banner_image TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			version INT NOT NULL DEFAULT 1,
			author_id UUID REFERENCES wiki_user (id) ON DELETE SET NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
			UNIQUE (tag_path, slug)
		);
		CREATE INDEX wiki_page_tag_path_updated ON wiki_page (tag_path, updated_at DESC);
		`,
	)
	if err != nil {
		return oops.New(err, "failed to create page table")
	}

	// No foreign key to wiki_page: revisions outlive their page.
	_, err = tx.Exec(ctx,
		`
		CREATE TABLE wiki_revision (
			id UUID NOT NULL PRIMARY KEY,
			page_id UUID NOT NULL,
			title VARCHAR(255) NOT NULL,
			content JSONB NOT NULL,
			version INT NOT NULL,
			author_id UUID REFERENCES wiki_user (id) ON DELETE SET NULL,
			content_hash VARCHAR(128) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			UNIQUE (page_id, version)
		);
		`,
	)
	if err != nil {
		return oops.New(err, "failed to create revision table")
	}

	_, err = tx.Exec(ctx,
		`
		CREATE TABLE asset (
			id UUID NOT NULL PRIMARY KEY,
			uploader_id UUID REFERENCES wiki_user (id) ON DELETE SET NULL,
			s3_key VARCHAR(2000) NOT NULL UNIQUE,
			filename VARCHAR(1000) NOT NULL,
			size INT NOT NULL,
			mime_type VARCHAR(255) NOT NULL,
			sha1sum VARCHAR(40) NOT NULL,
			width INT NOT NULL DEFAULT 0,
			height INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		`,
	)
	if err != nil {
		return oops.New(err, "failed to create asset table")
	}

	return nil
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE asset;
		DROP TABLE wiki_revision;
		DROP TABLE wiki_page;
		DROP TABLE wiki_user;
	`)
	if err != nil {
		return oops.New(err, "failed to drop tables")
	}
	return nil
}
