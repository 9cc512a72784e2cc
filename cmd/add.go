package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Start tracking a product listing by its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		product, err := a.prices.AddProductFromURL(cmd.Context(), args[0], actingUser(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Tracking #%d  %s\n", product.ID, product.Title)
		fmt.Printf("  %s %s  %.2f %s\n", product.Retailer, product.RetailerProductID, product.CurrentPrice, product.Currency)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
