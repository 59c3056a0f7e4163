package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	ErrorLevelWarn = iota
	ErrorLevelFatal
)

type ValidationError struct {
	message string
	Path    string
	Level   int
}

func (e ValidationError) Error() string {
	return e.message
}

var (
	// ErrUnsupportedManifestVersion is returned when the manifest version is not supported.
	ErrUnsupportedManifestVersion = ValidationError{
		message: "version is not supported",
		Path:    "manifestVersion",
		Level:   ErrorLevelWarn,
	}
	// ErrNameEmpty is returned when the manifest name is empty.
	ErrNameEmpty = ValidationError{
		message: "name is empty",
		Path:    "package.name",
		Level:   ErrorLevelFatal,
	}
	// ErrNameInvalid is returned when the manifest name is invalid.
	ErrNameInvalid = ValidationError{
		message: "name is invalid, only a-z, 0-9, - and _ are allowed",
		Path:    "package.name",
		Level:   ErrorLevelFatal,
	}
	// ErrInvalidPackFormat is returned when the pack format is not a positive number.
	ErrInvalidPackFormat = ValidationError{
		message: "pack format has to be a positive number",
		Path:    "package.packFormat",
		Level:   ErrorLevelFatal,
	}
	// ErrNoMinecraftRequirement is returned when the manifest does not contain a Minecraft requirement.
	ErrNoMinecraftRequirement = ValidationError{
		message: "does not contain a Minecraft requirement",
		Path:    "requirements.minecraft",
		Level:   ErrorLevelWarn,
	}
	// ErrInvalidMinecraftRequirement is returned when the manifest contains an invalid Minecraft requirement.
	ErrInvalidMinecraftRequirement = ValidationError{
		message: "contains an invalid Minecraft requirement",
		Path:    "requirements.minecraft",
		Level:   ErrorLevelFatal,
	}
	// ErrInvalidStrictMode is returned for unknown build.strict values.
	ErrInvalidStrictMode = ValidationError{
		message: `strict has to be "true", "warn" or "false"`,
		Path:    "build.strict",
		Level:   ErrorLevelFatal,
	}
	// ErrInvalidCustomModelDataStart is returned when the first id would be below 1.
	ErrInvalidCustomModelDataStart = ValidationError{
		message: "custom model data ids have to start at 1 or higher",
		Path:    "build.customModelDataStart",
		Level:   ErrorLevelFatal,
	}
)

// helper regexes
var (
	validName = regexp.MustCompile(`^[a-z0-9-_]+$`)
)

type Problems []ValidationError

// Fatal returns the first fatal error in the list. If there are no fatal errors, it returns nil.
func (p *Problems) Fatal() error {
	for _, problem := range *p {
		if problem.Level == ErrorLevelFatal {
			return problem
		}
	}
	return nil
}

func validateMinecraftRequirement(mcVersion string) Problems {
	problems := Problems{}

	if mcVersion == "" {
		problems = append(problems, ErrNoMinecraftRequirement)
		return problems
	}

	if _, err := semver.NewConstraint(mcVersion); err != nil {
		problems = append(problems, ErrInvalidMinecraftRequirement)
		return problems
	}

	if strings.HasPrefix(mcVersion, "*") || strings.HasPrefix(mcVersion, ">") || strings.HasPrefix(mcVersion, "^") {
		problems = append(problems, ValidationError{
			message: "Minecraft requirement is very broad, prefer a patch requirement like ~1.20.0",
			Path:    "requirements.minecraft",
			Level:   ErrorLevelWarn,
		})
	}

	return problems
}

func validateBuild(b *BuildOptions) Problems {
	problems := Problems{}

	switch b.StrictMode() {
	case StrictEnabled, StrictWarn, StrictDisabled:
	default:
		problems = append(problems, ErrInvalidStrictMode)
	}

	if b.CustomModelDataStart < 0 {
		problems = append(problems, ErrInvalidCustomModelDataStart)
	}

	if b.CompressionLevel < -1 || b.CompressionLevel > 9 {
		problems = append(problems, ValidationError{
			message: fmt.Sprintf("compression level %d is out of range (-1 to 9)", b.CompressionLevel),
			Path:    "build.compressionLevel",
			Level:   ErrorLevelFatal,
		})
	}

	for _, pattern := range b.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			problems = append(problems, ValidationError{
				message: fmt.Sprintf("ignore pattern %q is invalid", pattern),
				Path:    "build.ignore",
				Level:   ErrorLevelFatal,
			})
		}
	}

	if len(b.Translations) != 0 && len(b.Languages) == 0 {
		problems = append(problems, ValidationError{
			message: "translations are set but no languages to add them to",
			Path:    "build.languages",
			Level:   ErrorLevelWarn,
		})
	}

	return problems
}

// Validate checks the manifest for correctness.
func (m *Manifest) Validate() Problems {
	problems := Problems{}

	problems = append(problems, validateMinecraftRequirement(m.Requirements.Minecraft)...)

	// manifest version
	if m.ManifestVersion != 0 {
		problems = append(problems, ErrUnsupportedManifestVersion)
	}

	// package name
	switch {
	case m.Package.Name == "":
		problems = append(problems, ErrNameEmpty)
	case !validName.MatchString(m.Package.Name):
		problems = append(problems, ErrNameInvalid)
	}

	if m.Package.PackFormat <= 0 {
		problems = append(problems, ErrInvalidPackFormat)
	}

	if m.Package.Version != "" {
		if _, err := semver.StrictNewVersion(m.Package.Version); err != nil {
			problems = append(problems, ValidationError{
				message: "version is not valid semver",
				Path:    "package.version",
				Level:   ErrorLevelWarn,
			})
		}
	}

	problems = append(problems, validateBuild(&m.Build)...)
	return problems
}
