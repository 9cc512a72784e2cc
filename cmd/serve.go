package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricewatch/pricewatch/internal/server"
	"github.com/pricewatch/pricewatch/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pricewatch HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = viper.GetString("server.listen")
		}

		srv := server.New(server.Config{
			DB:       a.db,
			Prices:   a.prices,
			Alerts:   a.alerts,
			Hub:      a.hub,
			Username: viper.GetString("server.username"),
			Password: viper.GetString("server.password"),
			Log:      utils.Log,
		})
		return srv.Start(listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default from server.listen config, :8080)")
}
