package terminal

import (
	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/de-tools/cloud-optimizer/pkg/store/reportfile"
	"github.com/de-tools/cloud-optimizer/pkg/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Config   domain.Config
	Registry optimizer.Registry
	Logger   zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	store := reportfile.NewStore(opts.Config.ReportDir)
	driver := optimizer.NewDriver(opts.Config, opts.Registry, store)

	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd(opts, driver)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(opts Options, driver *optimizer.Driver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimizer",
		Short: "Multi-cloud resource optimizer",
	}

	cmd.AddCommand(commands.NewRunCmd(opts.Logger, driver))
	cmd.AddCommand(commands.NewScheduleCmd(opts.Logger, driver))
	cmd.AddCommand(commands.NewServeCmd(opts.Logger, opts.Config, driver))

	return cmd
}
