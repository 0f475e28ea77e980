package cmd

import (
	"fmt"
	"os"

	"github.com/MrJJimenez/rentcli/internal/scraper"
)

type ParseCmd struct {
	File string `arg:"" type:"existingfile" help:"Saved search results page (HTML)."`
	Zip  string `required:"" help:"Postal code the page was fetched for."`
	SiteOptions
	OutputOptions
}

func (p *ParseCmd) Run(ctx *Context) error {
	marker, err := scraper.ParseMarker(firstNonEmpty(p.Marker, ctx.Config.RequireMarker))
	if err != nil {
		return err
	}

	file, err := os.Open(p.File)
	if err != nil {
		return err
	}
	defer file.Close()

	parser := scraper.NewParser(nil, scraper.ParserOptions{
		BaseURL: firstNonEmpty(p.BaseURL, ctx.Config.BaseURL),
		Marker:  marker,
	}, ctx.Logger)
	listings, err := parser.ParseDocument(p.Zip, file)
	if err != nil {
		return fmt.Errorf("parse %s: %w", p.File, err)
	}
	return writeListings(ctx, listings, p.OutputOptions)
}
