package initCmd

import (
	"fmt"
	"os/user"
	"path/filepath"
	"regexp"

	"github.com/stoewer/go-strcase"

	"github.com/minepkg/propack/internals/pack"
	"github.com/minepkg/propack/internals/utils"
	"github.com/minepkg/propack/pkg/manifest"
)

var projectName = regexp.MustCompile(`^([a-z0-9]|[a-z0-9][a-z0-9-_]*[a-z0-9])$`)

const (
	fallbackVersion   = "0.1.0"
	fallbackMinecraft = "~1.20.1"
)

// defaultManifest returns a manifest with defaults for the project in dir.
// An existing pack.mcmeta provides the description and pack format
func defaultManifest(dir string) *manifest.Manifest {
	man := manifest.New()

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	man.Package.Name = strcase.KebabCase(filepath.Base(abs))
	man.Package.Version = fallbackVersion
	man.Package.Author = getDefaultAuthor()
	man.Requirements.Minecraft = fallbackMinecraft

	meta := &pack.Meta{}
	if err := utils.ReadJSONFile(filepath.Join(dir, "pack.mcmeta"), meta); err == nil {
		fmt.Println("Detected pack.mcmeta! Using it for default values")
		man.Package.Description = meta.Pack.Description
		if meta.Pack.PackFormat > 0 {
			man.Package.PackFormat = meta.Pack.PackFormat
		}
	}

	return man
}

func getDefaultAuthor() string {
	author := ""

	userName, err := utils.SimpleGitExec("config user.name")
	if err != nil {
		osUser, err := user.Current()
		if err != nil {
			return author
		}
		author = osUser.Name
		if author == "" {
			author = osUser.Username
		}
		return author
	}

	author = userName

	email, err := utils.SimpleGitExec("config user.email")
	if err != nil || email == "" {
		return author
	}

	return fmt.Sprintf("%s <%s>", author, email)
}
