package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/minepkg/propack/internals/build"
	"github.com/minepkg/propack/internals/cmdlog"
	"github.com/minepkg/propack/internals/commands"
	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/internals/utils"
	"github.com/minepkg/propack/internals/watch"
	"github.com/minepkg/propack/pkg/manifest"
)

var taskEmojis = map[string]string{
	"gather":    "📚",
	"models":    "🧊",
	"languages": "🌐",
	"assets":    "🗂",
	"package":   "📦",
	"serialize": "💾",
}

func init() {
	runner := &buildRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "build [dir]",
		Short: "Builds the resource pack of the project",
		Args:  cobra.MaximumNArgs(1),
	}, runner)

	cmd.Flags().BoolVarP(&runner.watch, "watch", "w", false, "Rebuild when files change")
	cmd.Flags().BoolVar(&runner.noPackage, "no-package", false, "Skip writing the zip file")

	rootCmd.AddCommand(cmd.Command)
}

type buildRunner struct {
	watch     bool
	noPackage bool
}

func (b *buildRunner) RunE(cmd *cobra.Command, args []string) error {
	dir := projectDir(args)
	m, err := loadManifest(dir)
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := b.build(ctx, dir, m, log); err != nil && !b.watch {
		return err
	} else if err != nil {
		fmt.Println(commands.Render(err))
	}
	if !b.watch {
		return nil
	}

	logger.Headline("Watching for changes (ctrl+c to stop)")
	return watch.Run(ctx, watch.Options{
		Dirs: []string{
			filepath.Join(dir, content.ContentDir),
			filepath.Join(dir, content.IncludeDir),
			filepath.Join(dir, manifest.FileName),
		},
		Ignore: []string{filepath.Join(dir, m.Build.OutputDir())},
		Logger: log,
	}, func(changed string) {
		logger.Log("Changed: " + changed)
		// pick up manifest changes, keep the old one if it broke
		if updated, err := loadManifest(dir); err == nil {
			m = updated
		} else {
			fmt.Println(commands.Render(err))
		}
		if err := b.build(ctx, dir, m, log); err != nil {
			fmt.Println(commands.Render(err))
		}
	})
}

func (b *buildRunner) build(ctx context.Context, dir string, m *manifest.Manifest, log *zap.Logger) error {
	logger.Headline(fmt.Sprintf("Building %s", m.Package.Name))

	spin := !viper.GetBool("noninteractive") && cmdlog.IsTerminal() && !verbose
	spinner := cmdlog.NewMaybeSpinner(spin)
	state := build.NewIO(dir, m, log)
	pipeline := build.New(build.Options{NoPackage: b.noPackage})
	task := logger.NewTask(len(pipeline.Tasks))
	pipeline.OnTask = func(n int, total int, t build.Task) {
		spinner.Stop()
		task.Step(taskEmojis[t.Name()], t.Name())
		spinner.Start()
	}

	err := pipeline.Run(ctx, state)
	spinner.Stop()
	if err != nil {
		return commands.FromErrors("build failed", err)
	}

	result := state.Result
	logger.Success(fmt.Sprintf(
		"Built %s item models with %s meshes in %s",
		utils.HumanCount(state.Models.Len()),
		utils.HumanCount(state.Mapping.Build().Len()),
		result.Duration.Round(time.Millisecond),
	))
	if result.Zip != "" {
		logger.Info(fmt.Sprintf("  %s (%s, %d files)", result.Zip, humanize.Bytes(uint64(result.Size)), result.Files))
		logger.Info("  sha1 " + result.Sha1)
	}
	logger.Info("  " + result.Descriptor)
	return nil
}
