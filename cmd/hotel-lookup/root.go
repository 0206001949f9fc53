package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/shared"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext(shared.Load())

	rootCmd := &cobra.Command{
		Use:   "hotel-lookup",
		Short: "Resolve hotel names to Booking.com hotel ids",
		Long: `Resolve hotel names to Booking.com hotel ids.

Hotel (id, name) pairs are cached per city in a local database the first
time a city is queried; later lookups run against that cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = observability.NewLogger("cli", cmd.ErrOrStderr()).
				Level(observability.Level(ctx.verbose))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.cfg.PlacesFile, "places", ctx.cfg.PlacesFile, "TOML file mapping city labels to city ids")
	flags.StringVar(&ctx.cfg.Store, "store", ctx.cfg.Store, "Lookup store backend (sqlite, mysql, memory)")
	flags.StringVar(&ctx.cfg.SQLitePath, "db", ctx.cfg.SQLitePath, "SQLite database path")
	flags.StringVar(&ctx.cfg.BookingBase, "base-url", ctx.cfg.BookingBase, "Booking.com JSON API base URL")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Log every query and request")

	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newFindCommand(ctx))
	rootCmd.AddCommand(newCityIDCommand(ctx))
	rootCmd.AddCommand(newStoreCommand(ctx))

	return rootCmd
}
