package commands

import (
	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/server"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ServeCmd struct {
	addr   string
	logger zerolog.Logger
	cfg    domain.Config
	driver *optimizer.Driver
}

// NewServeCmd starts the scheduler together with the HTTP API that exposes
// the latest report.
func NewServeCmd(logger zerolog.Logger, cfg domain.Config, driver *optimizer.Driver) *cobra.Command {
	sc := &ServeCmd{logger: logger, cfg: cfg, driver: driver}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and serve reports over HTTP",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", cfg.ServerAddr, "Address for the HTTP API")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := sc.logger.WithContext(cmd.Context())

	go func() {
		if err := sc.driver.Schedule(ctx); err != nil {
			sc.logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	api := server.NewWebAPI(sc.logger, server.Config{
		Addr:   sc.addr,
		Cfg:    sc.cfg,
		Driver: sc.driver,
	})
	return api.Start()
}
