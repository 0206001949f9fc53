package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_lookup/internal/bootstrap"
	"hotel_lookup/internal/domain"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the cached (hotel_id, name) pairs of a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(d *bootstrap.Deps) error {
				rows, err := d.Local.Dump(cmd.Context(), city)
				if errors.Is(err, domain.ErrTableNotFound) {
					return fmt.Errorf("no hotel lookups stored for %q, run 'store' or 'find' first: %w", city, err)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range rows {
					fmt.Fprintf(out, "%d\t%s\n", r.ID, r.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&city, "city", "c", "", "City label")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var (
		city  string
		hotel string
		exact bool
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find a hotel by name and print its details",
		Long: `Find a hotel by name and print its details as JSON.

The name is first matched as a substring of the cached hotel names. When
nothing matches and --exact is not set, progressively looser patterns are
tried. Prints null when no hotel, or more than one, matches.

--user and --pass default to BOOKING_USER and BOOKING_PASS and are only
required when those are unset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(d *bootstrap.Deps) error {
				info, err := d.Info.HotelInfo(cmd.Context(), domain.Query{Text: hotel, Place: city, Fuzzy: !exact})
				var amb *domain.AmbiguousError
				switch {
				case errors.As(err, &amb):
					log.Error().Str("hotel", hotel).Interface("candidates", amb.Candidates).Msg("Hotel name is not unique")
					return writeNull(cmd.OutOrStdout())
				case errors.Is(err, domain.ErrNotFound):
					log.Error().Str("hotel", hotel).Str("city", city).Msg("Hotel not found")
					return writeNull(cmd.OutOrStdout())
				case err != nil:
					return err
				}
				log.Info().Int64("hotel_id", info.Match.Hotel.ID).Str("strategy", info.Match.Strategy).Msg("hotel resolved")
				return writeRaw(cmd.OutOrStdout(), info.Details)
			})
		},
	}
	f := cmd.Flags()
	credentialFlags(cmd, ctx)
	f.StringVarP(&city, "city", "c", "", "City label")
	f.StringVar(&hotel, "hotel", "", "Hotel name")
	f.BoolVar(&exact, "exact", false, "Only run the substring match")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("hotel")
	return cmd
}

func newCityIDCommand(ctx *commandContext) *cobra.Command {
	var city, country string
	cmd := &cobra.Command{
		Use:   "city-id",
		Short: "Look up the Booking.com id of a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(d *bootstrap.Deps) error {
				id, err := d.Registry.ResolvePlaceID(cmd.Context(), city, country)
				if errors.Is(err, domain.ErrNotFound) {
					log.Error().Str("city", city).Str("country", country).Msg("City not found")
					return writeNull(cmd.OutOrStdout())
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), int64(id))
				return nil
			})
		},
	}
	f := cmd.Flags()
	credentialFlags(cmd, ctx)
	f.StringVarP(&city, "city", "c", "", "City name prefix")
	f.StringVar(&country, "country", "", "ISO country code, e.g. es")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

func newStoreCommand(ctx *commandContext) *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Re-fetch and store every hotel of a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDeps(cmd, func(d *bootstrap.Deps) error {
				n, err := d.Local.Populate(cmd.Context(), city)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored %d hotels for %s\n", n, domain.NormalizeLabel(city))
				return nil
			})
		},
	}
	f := cmd.Flags()
	credentialFlags(cmd, ctx)
	f.StringVarP(&city, "city", "c", "", "City label")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

// credentialFlags adds --user/--pass, required unless the environment
// already supplies them.
func credentialFlags(cmd *cobra.Command, ctx *commandContext) {
	f := cmd.Flags()
	f.StringVarP(&ctx.cfg.BookingUser, "user", "u", ctx.cfg.BookingUser, "Booking.com API user (env BOOKING_USER)")
	f.StringVarP(&ctx.cfg.BookingPass, "pass", "p", ctx.cfg.BookingPass, "Booking.com API password (env BOOKING_PASS)")
	if ctx.cfg.BookingUser == "" {
		_ = cmd.MarkFlagRequired("user")
	}
	if ctx.cfg.BookingPass == "" {
		_ = cmd.MarkFlagRequired("pass")
	}
}

func writeNull(w io.Writer) error {
	_, err := fmt.Fprintln(w, "null")
	return err
}

func writeRaw(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
