package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Play many bot-vs-bot games and report statistics"`
	Serve    ServeCmd         `cmd:"" help:"Run the game server for remote bots"`
	Bot      BotCmd           `cmd:"" help:"Connect a built-in bot to a server"`
	Play     PlayCmd          `cmd:"" help:"Play against bots in the terminal"`
	Replay   ReplayCmd        `cmd:"" help:"Verify a recorded game"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cambio"),
		kong.Description("Cambio card game engine, simulator and bot server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
