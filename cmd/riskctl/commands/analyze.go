package commands

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Bottleneck, SPOF, latency, risk score, weak point and advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}
			result := opts.service.Analyze(cmd.Context(), s.diagram(), s.entry(opts.entry))
			return opts.print(cmd.OutOrStdout(), map[string]interface{}{
				"success":           true,
				"bottleneckResult":  result.BottleneckResult,
				"spofResult":        result.SpofResult,
				"latencyRiskResult": result.LatencyRiskResult,
				"overallRisk":       result.OverallRisk,
				"suggestions":       result.Suggestions,
				"weakestPoint":      result.WeakestPoint,
				"aiSuggestions":     result.AISuggestions,
			})
		},
	}
}

func newCascadeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cascade",
		Short: "Fail each service in turn and list its dependents",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), opts.service.Cascade(cmd.Context(), s.diagram()))
		},
	}
}

func newStressCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Scale all loads by 20%, 50% and 100%",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), opts.service.Stress(cmd.Context(), s.diagram()))
		},
	}
}

func newWeakPointCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "weakpoint",
		Short: "Find the service with the least headroom",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), opts.service.WeakPoint(cmd.Context(), s.diagram()))
		},
	}
}
