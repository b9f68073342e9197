package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/app"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tabshelf command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var pollSeconds int
	var demo bool
	root := &cobra.Command{
		Use:           "tabshelf",
		Short:         "Organize browser tabs into collections from the terminal",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: cfgPath,
				PollEvery:  pollSeconds,
				Demo:       demo,
			})
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	root.Flags().IntVar(&pollSeconds, "poll", 0, "live tab poll interval in seconds (defaults to the configured value)")
	root.Flags().BoolVar(&demo, "demo", false, "use an in-memory browser and storage seeded with sample windows")

	root.AddCommand(newExportCmd(&cfgPath))
	root.AddCommand(newImportCmd(&cfgPath))
	root.AddCommand(newGroupsCmd(&cfgPath))
	return root
}
