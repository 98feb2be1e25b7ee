package main

import (
	_ "github.com/radixwiki/wiki/src/mcpserver"
	_ "github.com/radixwiki/wiki/src/migration"
	"github.com/radixwiki/wiki/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
