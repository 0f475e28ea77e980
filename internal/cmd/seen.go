package cmd

import (
	"fmt"

	"github.com/MrJJimenez/rentcli/internal/seen"
)

type SeenCmd struct {
	Diff   SeenDiffCmd   `cmd:"" help:"Write unseen listings (A-B) to JSON."`
	Update SeenUpdateCmd `cmd:"" help:"Merge new listings into seen history JSON."`
}

type SeenDiffCmd struct {
	New   string `name:"new" required:"" help:"Path to new listings JSON file (A)."`
	Seen  string `name:"seen" required:"" help:"Path to seen listings JSON file (B). Missing file is treated as empty."`
	Out   string `name:"out" required:"" help:"Output path for unseen listings JSON file (C)."`
	Stats bool   `name:"stats" help:"Print comparison stats."`
}

type SeenUpdateCmd struct {
	Seen  string `name:"seen" required:"" help:"Path to seen listings JSON file (B). Missing file is treated as empty."`
	Input string `name:"input" required:"" help:"Path to input listings JSON file to merge into seen history."`
	Out   string `name:"out" required:"" help:"Output path for updated seen listings JSON."`
	Stats bool   `name:"stats" help:"Print merge stats."`
}

func (c *SeenDiffCmd) Run(ctx *Context) error {
	newListings, err := seen.ReadListings(c.New)
	if err != nil {
		return fmt.Errorf("read --new: %w", err)
	}
	seenListings, err := seen.ReadListingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	unseen, stats := seen.Diff(newListings, seenListings)
	if err := seen.WriteListings(c.Out, unseen); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(
		ctx.Out,
		"total_new=%d total_seen=%d invalid_skipped=%d unseen_emitted=%d\n",
		stats.TotalNew,
		stats.TotalSeen,
		stats.InvalidSkipped(),
		stats.Unseen,
	)
	return err
}

func (c *SeenUpdateCmd) Run(ctx *Context) error {
	seenListings, err := seen.ReadListingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	input, err := seen.ReadListings(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	merged, stats := seen.Merge(seenListings, input)
	if err := seen.WriteListings(c.Out, merged); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(
		ctx.Out,
		"total_seen=%d total_input=%d invalid_skipped=%d added=%d total_out=%d\n",
		stats.TotalSeen,
		stats.TotalInput,
		stats.InvalidSkipped(),
		stats.Added,
		stats.TotalOut,
	)
	return err
}
