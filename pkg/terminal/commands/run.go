package commands

import (
	"fmt"

	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type RunCmd struct {
	output string
	logger zerolog.Logger
	driver *optimizer.Driver
}

func NewRunCmd(logger zerolog.Logger, driver *optimizer.Driver) *cobra.Command {
	rc := &RunCmd{logger: logger, driver: driver}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one analysis cycle and write a report",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.output, "output", "", "Report filename (default is optimization_report_<timestamp>.json)")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, args []string) error {
	ctx := rc.logger.WithContext(cmd.Context())

	rep, err := rc.driver.RunOnceNamed(ctx, rc.output)
	if err != nil {
		return fmt.Errorf("optimization run failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run complete: %d recommendation(s), estimated monthly savings %.0f\n",
		len(rep.Recommendations), rep.EstimatedMonthlySavings)
	return nil
}
