package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minepkg/propack/internals/commands"
	"github.com/minepkg/propack/internals/devserver"
)

func init() {
	runner := &serveRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "serve [dir]",
		Short: "Serves the built pack for a local Minecraft server",
		Long: `Serves the files of the last build:

  /pack.zip      the resource pack
  /pack.sha1     its sha1
  /pack.propack  the pack descriptor`,
		Args: cobra.MaximumNArgs(1),
	}, runner)

	cmd.Flags().IntVarP(&runner.port, "port", "p", 0, "Port to listen on (default from config serve.port)")

	rootCmd.AddCommand(cmd.Command)
}

type serveRunner struct {
	port int
}

func (s *serveRunner) RunE(cmd *cobra.Command, args []string) error {
	dir := projectDir(args)
	m, err := loadManifest(dir)
	if err != nil {
		return err
	}
	port := s.port
	if port == 0 {
		port = viper.GetInt("serve.port")
	}

	log := newLogger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := filepath.Join(dir, m.Build.OutputDir())
	logger.Headline(fmt.Sprintf("Serving %s on http://localhost:%d/pack.zip", m.Package.Name, port))
	return devserver.New(out, m.Package.Name, log).ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
