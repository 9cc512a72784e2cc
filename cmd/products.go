package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List tracked products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		products, err := a.db.ListProducts(cmd.Context(), actingUser(cmd))
		if err != nil {
			return err
		}
		if len(products) == 0 {
			fmt.Println("No tracked products. Add one with 'pricewatch add <url>'.")
			return nil
		}
		for _, p := range products {
			printProduct(p)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Stop tracking a product (deletes its history and alerts)",
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

		if err := a.prices.DeleteProduct(cmd.Context(), actingUser(cmd), id); err != nil {
			return err
		}
		fmt.Printf("Removed product #%d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(removeCmd)
}
