package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricewatch/pricewatch/internal/utils"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// checkCmd implements: pricewatch check [product-id ...]
//
// With no arguments every product of the acting user is rechecked. With
// --interval the command keeps running and rechecks on a ticker until
// interrupted.
var checkCmd = &cobra.Command{
	Use:   "check [product-id ...]",
	Short: "Re-scrape tracked products and record price movements",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("concurrency") {
			n, _ := cmd.Flags().GetInt("concurrency")
			viper.Set("check.concurrency", n)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var ids []int64
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", arg)
			}
			ids = append(ids, id)
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		ctx := cmd.Context()

		if interval <= 0 {
			return runCheck(ctx, a, ids, actingUser(cmd))
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		utils.Log.Infof("Checking every %s. Press Ctrl+C to stop.", interval)
		for {
			if err := runCheck(ctx, a, ids, actingUser(cmd)); err != nil {
				utils.Log.Errorf("Check run failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Duration("interval", 0, "Keep running, rechecking on this interval (e.g. 30m, 2h)")
	checkCmd.Flags().Int("concurrency", 4, "Number of concurrent rechecks")
}

func runCheck(ctx context.Context, a *app, ids []int64, userID int64) error {
	if len(ids) == 0 {
		var err error
		ids, err = a.db.ListProductIDs(ctx, userID)
		if err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		fmt.Println("No tracked products. Add one with 'pricewatch add <url>'.")
		return nil
	}

	updated, errs := a.prices.CheckPricesForProducts(ctx, ids)
	for _, err := range errs {
		utils.Log.Warnf("%v", err)
	}
	if len(updated) == 0 {
		fmt.Printf("Checked %d product(s), no price changes.\n", len(ids))
		return nil
	}
	for _, p := range updated {
		printProduct(p)
	}
	return nil
}

func printProduct(p storage.Product) {
	availability := ""
	if !p.Available {
		availability = "  [unavailable]"
	}
	fmt.Printf("#%-4d %-8s %8.2f %s  %s%s\n", p.ID, p.Retailer, p.CurrentPrice, p.Currency, p.Title, availability)
}
