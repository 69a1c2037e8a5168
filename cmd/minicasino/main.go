package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/minicasino/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"withargs" help:"Play at the casino in the terminal"`
	Serve   ServeCmd         `cmd:"" help:"Serve the casino over websockets"`
	Balance BalanceCmd       `cmd:"" help:"Print the chip balance"`
	Shop    ShopCmd          `cmd:"" help:"List or buy upgrades"`
	History HistoryCmd       `cmd:"" help:"List recently settled rounds"`
	Stats   StatsCmd         `cmd:"" help:"Summarise recorded rounds by game"`
}

func main() {
	// A missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("minicasino"),
		kong.Description("A small casino: blackjack, roulette, slots, poker, go fish, solitaire and a maze"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
