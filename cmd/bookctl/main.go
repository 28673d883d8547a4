// Command bookctl drives the scheduling API from a terminal. It lists the slots
// of a booking link, confirms one, reads or changes availability settings and
// mints host tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/meeting-scheduler/internal/client"
)

// Globals are flags shared by every command.
type Globals struct {
	API     string        `name:"api" help:"Base URL of the scheduling API" default:"http://localhost:8080" env:"BOOKCTL_API"`
	Token   string        `name:"token" help:"Bearer token for host endpoints" env:"BOOKCTL_TOKEN"`
	Timeout time.Duration `name:"timeout" help:"Request timeout" default:"15s"`
	JSON    bool          `name:"json" help:"Print JSON instead of text"`
	Debug   bool          `name:"debug" help:"Log API failures"`
}

func (g *Globals) client() *client.Client {
	return client.New(g.API, client.WithToken(g.Token))
}

// withTimeout bounds ctx by the timeout flag.
func (g *Globals) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.Timeout)
}

type CLI struct {
	Globals

	Slots    SlotsCmd    `cmd:"" help:"List the slots a booking link offers on a date"`
	Confirm  ConfirmCmd  `cmd:"" help:"Confirm a slot of a booking link"`
	Settings SettingsCmd `cmd:"" help:"Read or change availability settings"`
	Token    TokenCmd    `cmd:"" help:"Mint a host token for --token"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	ctx = log.Logger.WithContext(ctx)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bookctl"),
		kong.Description("Booking link and availability tool."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	err := kctx.Run(&cli.Globals)
	if err != nil {
		// Failures are reported the way a booking page would show them.
		log.Debug().Err(err).Msg("Command failed")
		kctx.Errorf("%s", client.UserMessage(err))
		os.Exit(1)
	}
}
