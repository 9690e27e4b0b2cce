package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"architecture-risk-engine/pkg/advisor"
	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/simulation"
)

type options struct {
	file     string
	entry    string
	logLevel string
	noAI     bool
	compact  bool

	cfg     *config.Config
	service *simulation.Service
}

// NewRootCmd builds a fresh command tree so tests can run commands in
// isolation.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Run architecture risk engines against a diagram file",
		Long: `riskctl loads a diagram (nodes + edges) from a JSON or YAML file and runs
one of the analysis or traffic engines over it, printing the result as JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Diagram file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&opts.entry, "entry", "", "Entry node override")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	root.PersistentFlags().BoolVar(&opts.noAI, "no-ai", false, "Skip advisory suggestions")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "Print compact JSON")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newCascadeCmd(opts),
		newStressCmd(opts),
		newWeakPointCmd(opts),
		newTrafficCmd(opts),
		newTimelineCmd(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) init() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := logger.Init("cli", o.logLevel); err != nil {
		return err
	}

	var adv advisor.Advisor
	if !o.noAI {
		adv = advisor.NewClient(cfg.Advisor)
	}
	o.cfg = cfg
	o.service = simulation.NewService(cfg, adv, nil)
	return nil
}

func (o *options) print(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if !o.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
