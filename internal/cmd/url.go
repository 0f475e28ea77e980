package cmd

import (
	"fmt"

	"github.com/MrJJimenez/rentcli/internal/scraper"
	"github.com/MrJJimenez/rentcli/internal/zipcodes"
)

type URLCmd struct {
	Zips []string `arg:"" optional:"" help:"Postal codes."`
	ZipSourceOptions
	BaseURL string `name:"base-url" help:"Listing site origin (default from config)."`
}

func (u *URLCmd) Run(ctx *Context) error {
	zips, err := zipcodes.Resolve(u.Zips, u.ZipFile, u.ZipColumn)
	if err != nil {
		return err
	}

	builder := scraper.NewURLBuilder(firstNonEmpty(u.BaseURL, ctx.Config.BaseURL), ctx.Logger)
	for _, zip := range zips {
		if _, err := fmt.Fprintln(ctx.Out, builder.Build(zip)); err != nil {
			return err
		}
	}
	return nil
}
