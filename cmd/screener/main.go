package main

import (
	"fmt"
	"os"

	"github.com/newthinker/screener/internal/config"
	"github.com/newthinker/screener/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	debug    bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Crypto screener - momentum and capitulation scans over CoinGecko markets",
	Long: `screener pulls the top coins by market cap from CoinGecko and sorts them
into long and short categories by their 24h, 7d and 30d price change and
volume/market-cap ratio. Distance from all-time high is shown as a qualifier.

Run without a subcommand to perform a single scan.`,
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	addScanFlags(rootCmd)
}

// setup builds the logger and loads the validated config.
func setup() (*config.Config, *zap.Logger, error) {
	log, err := logger.New(logger.Options{Development: debug, Level: logLevel})
	if err != nil {
		return nil, nil, err
	}

	var cfg *config.Config
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
