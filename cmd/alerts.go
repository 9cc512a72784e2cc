package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Manage price alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.alerts.List(cmd.Context(), actingUser(cmd))
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No alerts. Create one with 'pricewatch alerts add <product-id> <target-price>'.")
			return nil
		}
		for _, al := range list {
			state := "armed"
			if al.IsTriggered {
				state = "triggered"
			}
			fmt.Printf("#%-4d product #%-4d at or below %8.2f  [%s]\n", al.ID, al.ProductID, al.TargetPrice, state)
		}
		return nil
	},
}

var alertsAddCmd = &cobra.Command{
	Use:   "add <product-id> <target-price>",
	Short: "Alert when the product's price reaches the target or lower",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || productID <= 0 {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil || target <= 0 {
			return fmt.Errorf("invalid target price %q", args[1])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		alert, err := a.alerts.Create(cmd.Context(), actingUser(cmd), productID, target)
		if err != nil {
			return err
		}
		fmt.Printf("Alert #%d set: product #%d at or below %.2f\n", alert.ID, alert.ProductID, alert.TargetPrice)
		return nil
	},
}

var alertsSetCmd = &cobra.Command{
	Use:   "set <alert-id> <target-price>",
	Short: "Change an alert's target price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alertID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || alertID <= 0 {
			return fmt.Errorf("invalid alert id %q", args[0])
		}
		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil || target <= 0 {
			return fmt.Errorf("invalid target price %q", args[1])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.alerts.UpdateTarget(cmd.Context(), actingUser(cmd), alertID, target); err != nil {
			return err
		}
		fmt.Printf("Alert #%d target set to %.2f\n", alertID, target)
		return nil
	},
}

var alertsResetCmd = &cobra.Command{
	Use:   "reset <alert-id>",
	Short: "Re-arm a triggered alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alertID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || alertID <= 0 {
			return fmt.Errorf("invalid alert id %q", args[0])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.alerts.Reset(cmd.Context(), actingUser(cmd), alertID); err != nil {
			return err
		}
		fmt.Printf("Alert #%d re-armed\n", alertID)
		return nil
	},
}

var alertsRemoveCmd = &cobra.Command{
	Use:   "remove <alert-id>",
	Short: "Delete an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alertID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || alertID <= 0 {
			return fmt.Errorf("invalid alert id %q", args[0])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.alerts.Delete(cmd.Context(), actingUser(cmd), alertID); err != nil {
			return err
		}
		fmt.Printf("Alert #%d removed\n", alertID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsAddCmd)
	alertsCmd.AddCommand(alertsSetCmd)
	alertsCmd.AddCommand(alertsResetCmd)
	alertsCmd.AddCommand(alertsRemoveCmd)
}
