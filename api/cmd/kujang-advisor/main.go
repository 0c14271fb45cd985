package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kujang-advisor",
	Short: "Fertilizer dosage advisor for Pupuk Kujang products",
	Long: "Computes fertilizer recommendations for a crop, land size and harvest target " +
		"using the Pupuk Kujang product catalog and a generative model.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return cfg.Validate(cmd.Name())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
