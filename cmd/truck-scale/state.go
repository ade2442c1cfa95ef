package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"periph.io/x/host/v3"

	"github.com/sweeney/truck-scale/internal/config"
	"github.com/sweeney/truck-scale/internal/eeprom"
	"github.com/sweeney/truck-scale/internal/journal"
	"github.com/sweeney/truck-scale/internal/logic"
)

// openStoreForCommand initializes periph only when the at24 backend needs it.
func openStoreForCommand(cfg *config.Config) (eeprom.Device, error) {
	if cfg.Store == config.StoreAT24 {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("init periph host: %w", err)
		}
	}
	return openStore(cfg)
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func validText(ok bool) string {
	if ok {
		return color.GreenString("valid")
	}
	return color.RedString("invalid, default in use")
}

// NewPrintStateCommand prints the persisted totals and calibration factor.
func NewPrintStateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "print-state",
		Short: "Print the persisted totals and calibration factor and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := openStoreForCommand(cfg)
			if err != nil {
				return err
			}
			defer dev.Close()
			return printState(cmd, eeprom.NewStore(dev), cfg.JournalPath, time.Now())
		},
	}
}

func printState(cmd *cobra.Command, store *eeprom.Store, journalPath string, now time.Time) error {
	totals, totalsOK, err := store.LoadTotals()
	if err != nil {
		return fmt.Errorf("read totals: %w", err)
	}
	factor, factorOK, err := store.LoadFactor()
	if err != nil {
		return fmt.Errorf("read calibration factor: %w", err)
	}

	cmd.Println(bold("Totals:") + " (" + validText(totalsOK) + ")")
	cmd.Printf("  Loads: %s\n", bold("%d", totals.LoadCount))
	cmd.Printf("  Total weight: %s (%s)\n", bold("%.1f kg", totals.TotalWeight), bold("%.2f t", totals.TotalTons()))
	cmd.Println()
	cmd.Println(bold("Calibration:") + " (" + validText(factorOK) + ")")
	cmd.Printf("  Factor: %s\n", bold("%.2f", factor))

	if journalPath == "" {
		return nil
	}
	j, err := journal.Open(journalPath)
	if err != nil {
		logrus.WithError(err).Warn("journal unavailable")
		return nil
	}
	defer j.Close()
	count, kg, err := j.LoadsSince(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		logrus.WithError(err).Warn("reading journal")
		return nil
	}
	cmd.Println()
	cmd.Println(bold("Last 24 hours:"))
	cmd.Printf("  Loads: %s\n", bold("%d", count))
	cmd.Printf("  Weight: %s\n", bold("%.1f kg", kg))
	return nil
}

// NewResetCommand zeroes the persisted totals, optionally the factor too.
func NewResetCommand(cfg *config.Config) *cobra.Command {
	var (
		yes         bool
		resetFactor bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero the persisted load count and total weight",
		Long: `Zero the persisted load count and total weight. The daemon must be stopped,
otherwise its next Store overwrites the result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			dev, err := openStoreForCommand(cfg)
			if err != nil {
				return err
			}
			defer dev.Close()

			var rec Recorder
			if cfg.JournalPath != "" {
				j, err := journal.Open(cfg.JournalPath)
				if err != nil {
					logrus.WithError(err).Warn("journal unavailable, reset will not be recorded")
				} else {
					defer j.Close()
					rec = j
				}
			}
			return resetStore(cmd, eeprom.NewStore(dev), rec, resetFactor, time.Now())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	cmd.Flags().BoolVar(&resetFactor, "factor", false, fmt.Sprintf("also restore the default calibration factor (%d)", logic.DefaultFactor))
	return cmd
}

func resetStore(cmd *cobra.Command, store *eeprom.Store, rec Recorder, resetFactor bool, now time.Time) error {
	if err := store.SaveTotals(logic.Totals{}); err != nil {
		return fmt.Errorf("reset totals: %w", err)
	}
	cmd.Println("Totals reset: " + color.GreenString("0 loads, 0.0 kg"))

	factor := float64(logic.DefaultFactor)
	if resetFactor {
		if err := store.SaveFactor(factor); err != nil {
			return fmt.Errorf("reset calibration factor: %w", err)
		}
		cmd.Printf("Calibration factor restored: %s\n", bold("%d", logic.DefaultFactor))
	} else if f, ok, err := store.LoadFactor(); err == nil && ok {
		factor = f
	}

	if rec != nil {
		e := logic.Event{Timestamp: now, Type: logic.EventReset, Factor: factor, Reason: "CLI"}
		if err := rec.Record(context.Background(), e); err != nil {
			logrus.WithError(err).Warn("recording reset in journal")
		}
	}
	return nil
}
