package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape rental listings for postal codes."`
	Parse   ParseCmd   `cmd:"" help:"Extract listings from a saved results page."`
	URL     URLCmd     `cmd:"" name:"url" help:"Print the search URL for postal codes."`
	Seen    SeenCmd    `cmd:"" help:"Seen listings utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
