package initCmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minepkg/propack/internals/cmdlog"
	"github.com/minepkg/propack/internals/commands"
	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/internals/utils"
	"github.com/minepkg/propack/pkg/manifest"
)

var logger = cmdlog.New()

// New returns the init command
func New() *cobra.Command {
	runner := &initRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "init [dir]",
		Short: "Creates a new resource pack project",
		Args:  cobra.MaximumNArgs(1),
	}, runner)

	cmd.Flags().BoolVarP(&runner.force, "force", "f", false, "Overwrite the propack.toml if one exists")
	cmd.Flags().BoolVarP(&runner.yes, "yes", "y", false, "Choose defaults for all questions. (same as --non-interactive)")

	return cmd.Command
}

type initRunner struct {
	force bool
	yes   bool
}

func (i *initRunner) RunE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	target := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(target); err == nil && !i.force {
		return &commands.CliError{
			Text:        "this directory already contains a " + manifest.FileName,
			Suggestions: []string{"Use --force to overwrite it"},
		}
	}

	man := defaultManifest(dir)

	if !i.yes && !viper.GetBool("noninteractive") {
		askPackage(man)
	}

	if err := man.WriteFile(target); err != nil {
		return err
	}
	logger.Success("Created " + manifest.FileName)

	for _, d := range []string{content.ContentDir, content.IncludeDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), os.ModePerm); err != nil {
			return err
		}
	}
	logger.Success("Created content/ and include/")
	return nil
}

func askPackage(man *manifest.Manifest) {
	logger.Info("[package]")
	man.Package.Name = utils.StringPrompt(&promptui.Prompt{
		Label:     "Name",
		Default:   man.Package.Name,
		Validate:  validateName,
		AllowEdit: true,
	})

	man.Package.Description = utils.StringPrompt(&promptui.Prompt{
		Label:     "Description",
		Default:   man.Package.Description,
		AllowEdit: true,
	})

	man.Package.Author = utils.StringPrompt(&promptui.Prompt{
		Label:     "Author",
		Default:   man.Package.Author,
		AllowEdit: true,
	})

	man.Package.Version = utils.StringPrompt(&promptui.Prompt{
		Label:     "Version",
		Default:   man.Package.Version,
		AllowEdit: true,
		Validate: func(s string) error {
			switch {
			case s == "":
				return nil
			case strings.HasPrefix(s, "v"):
				return errors.New("please do not include v as a prefix")
			}
			if _, err := semver.NewVersion(s); err != nil {
				return errors.New("not a valid semver version (major.minor.patch)")
			}
			return nil
		},
	})

	format := utils.StringPrompt(&promptui.Prompt{
		Label:     "Pack format",
		Default:   strconv.Itoa(man.Package.PackFormat),
		AllowEdit: true,
		Validate: func(s string) error {
			if n, err := strconv.Atoi(s); err != nil || n < 1 {
				return errors.New("has to be a positive number")
			}
			return nil
		},
	})
	man.Package.PackFormat, _ = strconv.Atoi(format)

	fmt.Printf("\n")
	logger.Info("[requirements]")
	man.Requirements.Minecraft = utils.StringPrompt(&promptui.Prompt{
		Label:     "Supported Minecraft version",
		Default:   man.Requirements.Minecraft,
		AllowEdit: true,
		Validate: func(s string) error {
			if _, err := semver.NewConstraint(s); err != nil {
				return errors.New("not a valid version constraint")
			}
			return nil
		},
	})

	strict := utils.SelectPrompt(&promptui.Select{
		Label: "Invalid file names",
		Items: []string{"fail the build", "warn and skip", "skip"},
	})
	switch strict {
	case "warn and skip":
		man.Build.Strict = manifest.StrictWarn
	case "skip":
		man.Build.Strict = manifest.StrictDisabled
	}
}

func validateName(s string) error {
	switch {
	case strings.ToLower(s) != s:
		return errors.New("may only contain lowercase characters")
	case strings.HasPrefix(s, "-"):
		return errors.New("may not start with a –")
	case strings.HasSuffix(s, "-"):
		return errors.New("may not end with a –")
	case !projectName.MatchString(s):
		return errors.New("may only contain alphanumeric characters, dashes - and underscores _")
	}
	return nil
}
