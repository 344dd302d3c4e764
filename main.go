package main

import (
	"github.com/alecthomas/kong"

	"github.com/Yoshiben/coeliacs-like-beer-too/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("coeliacs-like-beer-too"), kong.Description("Directory service for venues serving gluten-free beer."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
