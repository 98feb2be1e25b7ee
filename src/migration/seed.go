package migration

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/ideas"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/spf13/cobra"
)

func seedCommand() *cobra.Command {
	var authorID string
	var pagesPerCategory int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrates the database and fills it with sample pages",
		Run: func(cmd *cobra.Command, args []string) {
			author, err := uuid.Parse(authorID)
			if err != nil {
				fmt.Printf("You must provide the id of the user who will author the sample pages.\n\n")
				cmd.Usage()
				os.Exit(1)
			}
			SampleSeed(author, pagesPerCategory)
		},
	}
	cmd.Flags().StringVar(&authorID, "author", "", "User id to credit the sample pages to")
	cmd.Flags().IntVar(&pagesPerCategory, "pages", 4, "Pages to create in each category")
	return cmd
}

// SampleSeed fills every open category with lorem pages for local
// development. Pages whose address is taken are skipped, so it can be run
// again safely.
func SampleSeed(authorID uuid.UUID, pagesPerCategory int) {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConn(ctx)
	defer conn.Close(ctx)

	author, err := wikidata.FetchUser(ctx, conn, authorID)
	if errors.Is(err, db.NotFound) {
		fmt.Println("Creating seed author...")
		author, err = wikidata.UpsertUser(ctx, conn, models.User{ID: authorID, DisplayName: "Wiki Team", IsAdmin: true})
	}
	if err != nil {
		panic(err)
	}

	for _, cat := range config.Categories {
		if cat.AuthorOnly {
			continue
		}
		fmt.Printf("Creating pages in %s...\n", cat.Path)
		for i := 0; i < pagesPerCategory; i++ {
			input := samplePage(cat)
			_, err := wikidata.CreatePage(ctx, conn, author, input)
			if errors.Is(err, wikidata.ErrSlugTaken) {
				continue
			}
			if err != nil {
				panic(fmt.Errorf("failed to create page %q: %w", input.Title, err))
			}
		}
	}

	fmt.Println("Done!")
}

func samplePage(cat config.Category) wikidata.PageInput {
	title := strings.TrimSuffix(lorem.Sentence(2, 5), ".")

	content := []blocks.Block{
		newBlock(blocks.TableOfContents{Title: "Contents", MaxDepth: blocks.DefaultTOCDepth}),
		newBlock(blocks.Content{Text: loremSection(2)}),
	}
	if randomBool() {
		content = append(content, newBlock(blocks.Callout{
			Variant: blocks.CalloutVariants[rand.Intn(len(blocks.CalloutVariants))],
			Title:   lorem.Sentence(1, 4),
			Text:    lorem.Sentence(6, 16),
		}))
	}
	content = append(content, newBlock(blocks.Content{Text: loremSection(2) + loremSection(3)}))
	if randomBool() {
		table := blocks.NewTable(3, 3)
		for r := range table.Rows {
			for c := range table.Rows[r] {
				table = table.SetCell(r, c, lorem.Word(3, 8))
			}
		}
		content = append(content, newBlock(table))
	}
	if randomBool() {
		content = append(content, newBlock(blocks.Quote{Text: lorem.Sentence(8, 20), Attribution: lorem.Word(4, 10)}))
	}
	content = append(content, newBlock(blocks.RecentPages{Title: "More in this category", TagPath: cat.Path, Limit: 3}))

	metadata := map[string]string{}
	for _, key := range cat.Metadata {
		switch key.Key {
		case "status":
			metadata[key.Key] = string(ideas.Statuses[rand.Intn(len(ideas.Statuses))])
		case "website":
			metadata[key.Key] = "https://" + lorem.Host()
		default:
			metadata[key.Key] = strings.Title(lorem.Word(4, 10))
		}
	}

	return wikidata.PageInput{
		Title:    strings.Title(title),
		TagPath:  cat.Path,
		Content:  content,
		Metadata: metadata,
	}
}

func newBlock(p blocks.Payload) blocks.Block {
	return blocks.Block{ID: blocks.NewID(), Data: p}
}

func loremSection(level int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h%d>%s</h%d>", level, strings.TrimSuffix(lorem.Sentence(1, 4), "."), level)
	for i := 0; i < 1+rand.Intn(3); i++ {
		fmt.Fprintf(&b, "<p>%s</p>", lorem.Paragraph(2, 5))
	}
	return b.String()
}

func randomBool() bool {
	return rand.Intn(2) == 1
}
