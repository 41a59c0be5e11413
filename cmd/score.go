package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/logger"
	"github.com/spigell/provider-matcher/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the rubric score breakdown of a provider",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntP("provider", "p", 0, "provider id")
	if err := scoreCmd.MarkFlagRequired("provider"); err != nil {
		log.Fatalf("marking provider flag as required: %v", err)
	}
}

func score(cmd *cobra.Command) {
	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	dataset, err := loadDataset(config)
	if err != nil {
		baseLogger.Fatal("loading dataset", zap.Error(err))
	}

	id, _ := cmd.Flags().GetInt("provider")
	provider := dataset.Provider(id)
	if provider == nil {
		baseLogger.Fatal("provider not found", zap.Int(logger.FieldProviderID, id))
	}

	rubric := scoring.NewRubric(baseLogger)
	printBreakdown(cmd.OutOrStdout(), provider, rubric.Breakdown(provider, provider.Certifications))
}

func printBreakdown(w io.Writer, provider *catalog.Provider, breakdown scoring.Breakdown) {
	fmt.Fprintf(w, "provider=%d %s score=%.2f\n", provider.ID, provider.CompanyName, breakdown.Score)
	for _, f := range breakdown.Factors {
		if !f.Present {
			fmt.Fprintf(w, "  %-14s excluded\n", f.Name)
			continue
		}
		fmt.Fprintf(w, "  %-14s %g\n", f.Name, f.Value)
	}
}
