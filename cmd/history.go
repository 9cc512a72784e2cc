package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <product-id>",
	Short: "Show a product's recorded price history and stats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		product, err := a.db.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		points, err := a.db.PriceHistory(ctx, id, limit)
		if err != nil {
			return err
		}
		stats, err := a.db.PriceStats(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("%s (#%d, %s)\n", product.Title, product.ID, product.Retailer)
		fmt.Printf("min %.2f  max %.2f  avg %.2f  over %d point(s)\n\n", stats.Min, stats.Max, stats.Avg, stats.Count)
		for _, p := range points {
			fmt.Printf("%s  %8.2f %s\n", p.RecordedAt.Format("2006-01-02 15:04"), p.Price, p.Currency)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Maximum number of history points to print (0 for all)")
}
