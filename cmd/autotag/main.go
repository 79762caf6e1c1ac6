package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/autotag/cmd/autotag/commands"
	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("autotag"),
		kong.Description("Generate front-matter tags for markdown content with a language model."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	err := parser.Run(&commands.Global{Stdout: os.Stdout}, cli)
	os.Exit(ferrors.NewCLIErrorAdapter(cli.Verbose, nil).Handle(err))
}
