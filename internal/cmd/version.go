package cmd

import "fmt"

type VersionCmd struct {
	Short bool `help:"Print only the version number."`
}

func (v *VersionCmd) Run(ctx *Context) error {
	if v.Short {
		_, err := fmt.Fprintln(ctx.Out, ctx.Version)
		return err
	}
	_, err := fmt.Fprintf(ctx.Out, "rentcli %s\n", ctx.Version)
	return err
}
