package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/minepkg/propack/cmd/config"
	"github.com/minepkg/propack/cmd/initCmd"
	"github.com/minepkg/propack/internals/cmdlog"
	"github.com/minepkg/propack/internals/commands"
	zlog "github.com/minepkg/propack/internals/logger"
	"github.com/minepkg/propack/pkg/manifest"
)

// PropackVersion is a constant of the current propack version
const PropackVersion = "0.1.0"

var logger = cmdlog.New()

// Version and Commit are set by the build
var (
	Version string
	Commit  string
)

var (
	cfgFile       string
	disableColors bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: PropackVersion,
	Use:     "propack",
	Short:   "Builds Minecraft resource packs with combinable item models",
	Long: `propack turns declarative item models into a resource pack.

Item models combine elements or slots of sub-meshes. Every combination
gets its own mesh and a custom model data id per target item.`,

	Example: `
  propack init
  propack build --watch
  propack resolve build/swords.propack diamond_sword fancy:item/sword --element gem`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if Version != "" {
		rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&disableColors, "no-color", "", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/propack/config.toml)")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "never show prompts")
	viper.BindPFlag("noninteractive", rootCmd.PersistentFlags().Lookup("non-interactive"))

	rootCmd.AddCommand(config.SubCmd)
	rootCmd.AddCommand(initCmd.New())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" {
		color.Disable()
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if file, err := config.File(); err == nil {
		viper.SetConfigFile(file)
	}

	viper.SetDefault("serve.port", 8275)
	viper.SetEnvPrefix("propack")
	viper.AutomaticEnv() // read in environment variables that match

	// a missing config file is fine
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns the structured logger for long running commands
func newLogger() *zap.Logger {
	return zlog.NewCLI(verbose || viper.GetBool("verboselogging"), viper.GetString("logfile"))
}

// projectDir returns the project directory given as first argument
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadManifest reads and validates the propack.toml in dir
func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.ReadFile(filepath.Join(dir, manifest.FileName))
	if os.IsNotExist(err) {
		return nil, &commands.CliError{
			Text:        "no " + manifest.FileName + " found in " + dir,
			Suggestions: []string{"Run `propack init` to create one"},
		}
	}
	if err != nil {
		return nil, &commands.CliError{Text: "invalid " + manifest.FileName, Help: err.Error(), Err: err}
	}

	problems := m.Validate()
	for _, problem := range problems {
		if problem.Level == manifest.ErrorLevelWarn {
			logger.Warn(fmt.Sprintf("%s: %s", problem.Path, problem.Error()))
		}
	}
	if err := problems.Fatal(); err != nil {
		return nil, &commands.CliError{
			Text: fmt.Sprintf("invalid %s: %s", manifest.FileName, err.Error()),
			Err:  err,
		}
	}
	return m, nil
}
