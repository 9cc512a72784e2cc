package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/pricewatch/pricewatch/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `             _                       _       _
	 _ __  _ __(_) ___ _____      ____| |_ ___| |__
	| '_ \| '__| |/ __/ _ \ \ /\ / / _. | __/ __| '_ \
	| |_) | |  | | (_|  __/\ V  V / (_| | || (__| | | |
	| .__/|_|  |_|\___\___| \_/\_/ \__,_|\__\___|_| |_|
	|_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "A price tracker for Amazon, Walmart, and Best Buy listings.",
	Long: LOGO + `pricewatch tracks product listings across Amazon, Walmart, and Best Buy,
records their price history, and alerts you when a price drops below your target.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pricewatch.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (overrides db.path from config)")
	rootCmd.PersistentFlags().Int64P("user", "u", 1, "Acting user ID")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".pricewatch")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.pricewatch.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("db.path", "pricewatch.sqlite")
	viper.SetDefault("scrape.timeout", 10)
	viper.SetDefault("scrape.max_retries", 3)
	viper.SetDefault("scrape.user_agent", "")
	viper.SetDefault("scrape.proxy", "")
	viper.SetDefault("check.concurrency", 4)
	viper.SetDefault("notify.email_from", "")
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
