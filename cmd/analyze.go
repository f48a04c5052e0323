package cmd

import (
	"context"
	"fmt"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/config"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/output"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symptoms>",
	Short: "Analyze a symptom description using AI",
	Long: `Analyze a free-text symptom description with an LLM and print a
structured report: likely condition, severity, confidence, remedies,
when to see a doctor, precautions, and a disclaimer.

Examples:
  servvia analyze "persistent headache for 2 days, nauseous, sensitive to light"
  servvia analyze "dry cough and fatigue" --age 30 --gender female --duration "2 days"
  servvia analyze "sore throat" --severity mild --history "seasonal allergies" --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("age", 0, "patient age in years")
	analyzeCmd.Flags().String("gender", "", "patient gender")
	analyzeCmd.Flags().String("duration", "", "how long the symptoms have lasted (e.g. '2 days')")
	analyzeCmd.Flags().String("severity", "", "perceived severity (mild, moderate, severe)")
	analyzeCmd.Flags().String("history", "", "relevant medical history")
	analyzeCmd.Flags().Bool("stream", false, "print raw model output as it arrives")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symptoms := args[0]
	streaming, _ := cmd.Flags().GetBool("stream")

	format := output.ParseFormat(viper.GetString("format"))
	verbose := viper.GetBool("verbose")
	ctx := context.Background()

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger := newLogger(verbose)

	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w\n\nTroubleshooting:\n- Check provider config in ~/.servvia.yaml\n- For cloud providers, verify API keys are set\n- For Ollama, ensure it is running: ollama serve", err)
	}

	engine := analyzer.New(provider, engineOptions(cfg), logger)
	info := additionalInfoFromFlags(cmd)
	writer := output.New(cmd.OutOrStdout(), format)

	if !streaming {
		result, err := engine.Analyze(ctx, symptoms, info)
		if err != nil {
			return err
		}
		return writer.WriteReport(result)
	}

	stream, err := engine.AnalyzeStream(ctx, symptoms, info)
	if err != nil {
		return err
	}

	// Echo raw fragments as they arrive, then print the structured report.
	for chunk := range stream.Chunks() {
		if format == output.FormatText {
			fmt.Fprint(cmd.OutOrStdout(), chunk)
		}
	}

	result, err := stream.Result()
	if err != nil {
		return err
	}

	if format == output.FormatText {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return writer.WriteReport(result)
}

// additionalInfoFromFlags collects the optional metadata flags, returning
// nil when none were set.
func additionalInfoFromFlags(cmd *cobra.Command) *prompt.AdditionalInfo {
	age, _ := cmd.Flags().GetInt("age")
	gender, _ := cmd.Flags().GetString("gender")
	duration, _ := cmd.Flags().GetString("duration")
	severity, _ := cmd.Flags().GetString("severity")
	history, _ := cmd.Flags().GetString("history")

	info := prompt.AdditionalInfo{
		Age:            age,
		Gender:         gender,
		Duration:       duration,
		SeverityLevel:  severity,
		MedicalHistory: history,
	}
	if info == (prompt.AdditionalInfo{}) {
		return nil
	}
	return &info
}

// engineOptions maps the config onto the engine's model options, selecting
// the model of the active provider.
func engineOptions(cfg *config.Config) analyzer.Options {
	opts := analyzer.Options{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}

	switch cfg.LLM.Provider {
	case "openai":
		opts.Model = cfg.LLM.OpenAI.Model
	case "anthropic":
		opts.Model = cfg.LLM.Anthropic.Model
	case "ollama":
		opts.Model = cfg.LLM.Ollama.Model
	}

	return opts
}
