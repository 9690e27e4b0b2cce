package commands

import (
	"github.com/spf13/cobra"

	"architecture-risk-engine/pkg/simulation"
)

func newTrafficCmd(opts *options) *cobra.Command {
	var traffic float64

	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Propagate one traffic volume through the edge percentages",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}
			total := s.traffic()
			if cmd.Flags().Changed("traffic") {
				total = traffic
			}

			result, err := opts.service.RunTraffic(cmd.Context(), simulation.TrafficRequest{
				TotalTraffic:     total,
				EntryNode:        s.entry(opts.entry),
				Nodes:            s.Nodes,
				Edges:            s.Edges,
				MaxVisitsPerNode: s.MaxVisitsPerNode,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Float64Var(&traffic, "traffic", 0, "Total traffic override")
	return cmd
}

func newTimelineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Run traffic steps with queue accumulation and retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(opts.file)
			if err != nil {
				return err
			}

			retryRate := opts.cfg.Traffic.RetryRate
			if s.RetryRate != nil {
				retryRate = *s.RetryRate
			}
			failureRate := opts.cfg.Traffic.FailureRate
			if s.FailureRate != nil {
				failureRate = *s.FailureRate
			}

			result, err := opts.service.RunTimeline(cmd.Context(), simulation.TimelineRequest{
				Steps:            s.TrafficSteps,
				EntryNode:        s.entry(opts.entry),
				Nodes:            s.Nodes,
				Edges:            s.Edges,
				MaxVisitsPerNode: s.MaxVisitsPerNode,
				TimeoutMs:        s.TimeoutMs,
				RetryRate:        retryRate,
				FailureRate:      failureRate,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), result)
		},
	}
}
