package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

var envFile = flag.String("env", ".env", "dotenv file read before the environment")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&serveCmd{}, "")
	subcommands.Register(&adminsCmd{}, "registry")
	subcommands.Register(&channelsCmd{}, "registry")
	subcommands.Register(&addAdminCmd{}, "registry")
	subcommands.Register(&removeChannelCmd{}, "registry")
	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
