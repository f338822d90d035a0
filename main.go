package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps/config"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "obd-premium-apps",
	Short: "Tenant and permission gateway for the OBD Premium Apps suite",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize configuration
		if err := config.InitConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		cfg := config.GetConfig()

		// Initialize logger
		return logger.InitLogger(logger.Options{
			Level:       cfg.Log.Level,
			Dir:         cfg.Log.Dir,
			Development: !config.IsProduction(),
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
