package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/logger"
	"github.com/spigell/provider-matcher/internal/matching"
	"github.com/spigell/provider-matcher/internal/scoring"
)

const (
	PromptDumpToFile    = "Dump results to file"
	PromptShowBreakdown = "Show score breakdown"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDumpToFile, PromptShowBreakdown, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the top providers for service requests in the dataset",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntP("request", "r", 0, "match only the request with this id. Default is every request in the dataset.")
	matchCmd.Flags().BoolP("yes", "y", false, "do not ask what to do with the results")
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	runLogger := baseLogger.With(zap.String(logger.FieldRunID, uuid.NewString()))

	config, err := getConfig()
	if err != nil {
		runLogger.Fatal("getting a config", zap.Error(err))
	}

	runLogger.Info("starting the provider-matcher", zap.String("version", version))

	dataset, err := loadDataset(config)
	if err != nil {
		runLogger.Fatal("loading dataset", zap.Error(err))
	}

	runLogger.Info("dataset loaded",
		zap.Int("services", len(dataset.Services)),
		zap.Int("requestors", len(dataset.Requestors)),
		zap.Int("providers", len(dataset.Providers)),
		zap.Int("requests", len(dataset.Requests)),
	)

	requests, err := selectRequests(cmd, dataset)
	if err != nil {
		runLogger.Fatal("selecting requests", zap.Error(err))
	}

	filters, err := prepareFiltering(config, runLogger)
	if err != nil {
		runLogger.Fatal("preparing filters", zap.Error(err))
	}

	rubric := scoring.NewRubric(runLogger)
	scorer, err := prepareScorer(ctx, config, rubric, runLogger)
	if err != nil {
		runLogger.Fatal("preparing scorer", zap.Error(err))
	}

	matcher := matching.New(filters, scorer, runLogger)

	out := cmd.OutOrStdout()
	all := make([]*catalog.MatchingResults, 0, len(requests))
	for _, req := range requests {
		results, err := runRequest(ctx, matcher, req, dataset.Providers)
		if err != nil {
			runLogger.Fatal("matching request", zap.Int(logger.FieldRequestID, req.ID), zap.Error(err))
		}
		fmt.Fprintf(out, "request %d:\n%s\n", req.ID, results.Report())
		all = append(all, results)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			runLogger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, out, runLogger, rubric, all); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			runLogger.Fatal("exiting", zap.Error(err))
		}
	}
}

func runRequest(ctx context.Context, matcher *matching.Matcher, req *catalog.Request, providers []*catalog.Provider) (*catalog.MatchingResults, error) {
	items, err := matcher.FindTopProviders(ctx, req, providers)
	if err != nil {
		return nil, err
	}
	return &catalog.MatchingResults{RequestID: req.ID, Items: items}, nil
}

func selectRequests(cmd *cobra.Command, dataset *catalog.Dataset) ([]*catalog.Request, error) {
	id, _ := cmd.Flags().GetInt("request")
	if id == 0 {
		if len(dataset.Requests) == 0 {
			return nil, errors.New("dataset has no requests")
		}
		return dataset.Requests, nil
	}

	req := dataset.Request(id)
	if req == nil {
		return nil, fmt.Errorf("there is no such request id %d", id)
	}
	return []*catalog.Request{req}, nil
}

func handleAction(action string, out io.Writer, runLogger *zap.Logger, rubric *scoring.Rubric, all []*catalog.MatchingResults) error {
	switch action {
	case PromptDumpToFile:
		for _, results := range all {
			filename, err := results.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump results to file: %w", err)
			}
			runLogger.Info("dumping result to file", zap.Int(logger.FieldRequestID, results.RequestID), zap.String("filename", filename))
		}
		return nil
	case PromptShowBreakdown:
		for _, results := range all {
			for _, item := range results.Items {
				if item.Provider == nil {
					continue
				}
				printBreakdown(out, item.Provider, rubric.Breakdown(item.Provider, item.Provider.Certifications))
			}
		}
		return nil
	case PromptExit:
		runLogger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
