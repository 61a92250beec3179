package cli

import (
	"fmt"

	"resumelens/internal/analysis"
	"resumelens/internal/common"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/llm"
	"resumelens/internal/mood"
	"resumelens/internal/utils"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume for quality and effectiveness",
	Long: `Analyze a resume document to evaluate its structure, content quality,
and effectiveness. Accepts PDF and plain text files; scanned PDFs fall back
to OCR when available.

The analysis includes:
- Overall and per-section scoring
- Quantification and action verb assessment
- Soft skills inference and consistency checks
- Role alignment and seniority estimation
- Contact and social media detection

The --mood flag adjusts the tone of the feedback (professional, brutal,
soft, witty, motivational).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeMood   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeMood, "mood", "", "Feedback tone: professional, brutal, soft, witty, or motivational")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.RegisterFlagCompletionFunc("mood", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		moods := make([]string, 0, len(mood.All()))
		for _, m := range mood.All() {
			moods = append(moods, string(m))
		}
		return moods, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analysisMood, err := mood.Parse(analyzeMood)
	if err != nil {
		return err
	}

	if err := utils.ValidateFileSize(args[0], cfg.App.MaxFileSize); err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ValidateAndReadDocument(args[0])
	if err != nil {
		return err
	}

	if analyzeConfig.OutputFile != "" {
		if err := fileProcessor.ValidateOutputFile(analyzeConfig.OutputFile); err != nil {
			return err
		}
	}

	orchestrator, cleanup, err := newOrchestrator(cfg, "analyze", logger)
	if err != nil {
		return err
	}
	defer cleanup()

	doc := extract.Document{Filename: args[0], Data: data}

	logger.Info("Starting resume analysis",
		"file", args[0],
		"file_size", len(data),
		"mood", string(analysisMood),
		"output_format", analyzeConfig.OutputFormat)

	report, err := orchestrator.AnalyzeDocument(cmd.Context(), doc, analysisMood)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(report, analyzeConfig); err != nil {
		return err
	}

	logger.Info("Resume analysis completed successfully",
		"overall_score", report.OverallScore)
	return nil
}

// newOrchestrator builds an analysis orchestrator backed by the configured
// provider for the given operation. The returned cleanup closes the provider.
func newOrchestrator(cfg *config.Config, operationType string, logger *errors.Logger) (*analysis.Orchestrator, func(), error) {
	var opCfg config.OperationAIConfig
	switch operationType {
	case "match":
		opCfg = cfg.GetMatchConfig()
	default:
		opCfg = cfg.GetAnalyzeConfig()
	}

	provider, err := llm.NewProvider(&opCfg, operationType, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	prompts, err := config.NewPromptStore(cfg.AI.Prompts, logger)
	if err != nil {
		_ = provider.Close()
		return nil, nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	extractor := extract.New(logger)
	orchestrator := analysis.New(extractor, provider, prompts, logger)
	cleanup := func() { _ = provider.Close() }
	return orchestrator, cleanup, nil
}
