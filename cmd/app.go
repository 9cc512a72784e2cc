package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricewatch/pricewatch/internal/utils"
	"github.com/pricewatch/pricewatch/pkg/alerts"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/prices"
	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/retailers/amazon"
	"github.com/pricewatch/pricewatch/pkg/retailers/bestbuy"
	"github.com/pricewatch/pricewatch/pkg/retailers/walmart"
	"github.com/pricewatch/pricewatch/pkg/scrape"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// app wires the shared collaborators every subcommand needs: storage,
// the retailer scraper, the alert engine, and the notification fan-out.
type app struct {
	db      *storage.DB
	hub     *notify.Hub
	alerts  *alerts.Engine
	prices  *prices.Service
	scraper *retailers.Scraper
}

func newApp(cmd *cobra.Command) (*app, error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("db.path")
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub()
	mailer := notify.LogMailer{Log: utils.Log, From: viper.GetString("notify.email_from")}
	dispatcher := notify.NewDispatcher(hub, mailer, utils.Log)
	engine := alerts.NewEngine(db, dispatcher, utils.Log)
	scraper := newScraper()

	svc := prices.NewService(prices.Config{
		DB:          db,
		Scraper:     scraper,
		Alerts:      engine,
		Notifier:    dispatcher,
		ScrapeOpts:  scrapeOptions(cmd),
		Concurrency: viper.GetInt("check.concurrency"),
		Log:         utils.Log,
	})

	return &app{
		db:      db,
		hub:     hub,
		alerts:  engine,
		prices:  svc,
		scraper: scraper,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newScraper() *retailers.Scraper {
	fetcher := scrape.NewFetcher()
	renderer := scrape.ChromeRenderer{}
	return retailers.NewScraper(utils.Log,
		amazon.New(fetcher, renderer),
		walmart.New(fetcher, renderer),
		bestbuy.New(fetcher, renderer),
	)
}

func scrapeOptions(cmd *cobra.Command) scrape.Options {
	proxy, _ := cmd.Flags().GetString("proxy")
	if proxy == "" {
		proxy = viper.GetString("scrape.proxy")
	}
	return scrape.Options{
		ProxyURL:   proxy,
		Timeout:    time.Duration(viper.GetInt("scrape.timeout")) * time.Second,
		MaxRetries: viper.GetInt("scrape.max_retries"),
		UserAgent:  viper.GetString("scrape.user_agent"),
	}
}

func actingUser(cmd *cobra.Command) int64 {
	id, _ := cmd.Flags().GetInt64("user")
	if id <= 0 {
		return 1
	}
	return id
}
