package commands

import (
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ScheduleCmd struct {
	logger zerolog.Logger
	driver *optimizer.Driver
}

// NewScheduleCmd runs analysis cycles on a fixed interval until interrupted.
func NewScheduleCmd(logger zerolog.Logger, driver *optimizer.Driver) *cobra.Command {
	sc := &ScheduleCmd{logger: logger, driver: driver}
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run analysis cycles on a fixed interval",
		RunE:  sc.run,
	}
}

func (sc *ScheduleCmd) run(cmd *cobra.Command, args []string) error {
	ctx := sc.logger.WithContext(cmd.Context())
	return sc.driver.Schedule(ctx)
}
