package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/filtering"
	"github.com/spigell/provider-matcher/internal/logger"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show the filtering tiers and which filters are enabled",
	Run: func(cmd *cobra.Command, _ []string) {
		tiers(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}

func tiers(cmd *cobra.Command) {
	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	filters, err := prepareFiltering(config, baseLogger)
	if err != nil {
		baseLogger.Fatal("preparing filters", zap.Error(err))
	}

	printTiers(cmd.OutOrStdout(), filtering.Describe(filters.Tiers()))
}

func printTiers(w io.Writer, statuses []filtering.TierStatus) {
	for _, tier := range statuses {
		fmt.Fprintf(w, "%s:\n", tier.Name)
		for _, s := range tier.Filters {
			state := "enabled"
			if !s.Enabled {
				state = "disabled"
				if s.Reason != "" {
					state += " (" + s.Reason + ")"
				}
			}
			fmt.Fprintf(w, "  %-16s %s\n", s.Name, state)
		}
	}
}
