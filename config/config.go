package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

const DefaultLocale = "en_US.UTF-8"

// Config captures all command-line options required to run a scan.
type Config struct {
	Paths     []string
	Locale    language.Tag
	Progress  string
	LogLevel  string
	LogDir    string
	StateDir  string
	KeepGoing bool
	Verify    bool
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("locale", DefaultLocale, "Locale used for digit grouping in summaries (must be UTF-8)")
	flags.String("progress", "bar", "Progress display: bar, pterm, none")
	flags.String("log-level", "warn", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs go to stderr only when empty)")
	flags.String("state-dir", "", "Directory for cached scan results (disabled when empty)")
	flags.Bool("keep-going", true, "Report malformed mailboxes and continue with the next file")
	flags.Bool("verify", false, "Cross-check message counts against go-mbox instead of printing statistics")

	return nil
}

// LoadConfig converts the parsed Cobra flags and positional arguments into a
// Config struct with validation.
func LoadConfig(cmd *cobra.Command, args []string) (Config, error) {
	flags := cmd.Flags()

	localeName, err := flags.GetString("locale")
	if err != nil {
		return Config{}, err
	}
	progress, err := flags.GetString("progress")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	stateDir, err := flags.GetString("state-dir")
	if err != nil {
		return Config{}, err
	}
	keepGoing, err := flags.GetBool("keep-going")
	if err != nil {
		return Config{}, err
	}
	verify, err := flags.GetBool("verify")
	if err != nil {
		return Config{}, err
	}

	locale, err := ParseLocale(localeName)
	if err != nil {
		return Config{}, err
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	if stateDir != "" {
		stateDir = filepath.Clean(stateDir)
	}

	cfg := Config{
		Paths:     args,
		Locale:    locale,
		Progress:  strings.ToLower(progress),
		LogLevel:  logLevel,
		LogDir:    logDir,
		StateDir:  stateDir,
		KeepGoing: keepGoing,
		Verify:    verify,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseLocale turns a POSIX locale name such as "en_US.UTF-8" into a
// language tag. Locales with a codeset other than UTF-8 are rejected.
func ParseLocale(name string) (language.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return language.Und, fmt.Errorf("locale is empty")
	}

	base := name
	if i := strings.IndexByte(base, '@'); i >= 0 {
		base = base[:i]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		codeset := strings.ToLower(strings.ReplaceAll(base[i+1:], "-", ""))
		if codeset != "utf8" {
			return language.Und, fmt.Errorf("locale %q is not a UTF-8 locale", name)
		}
		base = base[:i]
	}

	tag, err := language.Parse(strings.ReplaceAll(base, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("unsupported locale %q: %w", name, err)
	}
	return tag, nil
}

func validateConfig(cfg Config) error {
	switch cfg.Progress {
	case "bar", "pterm", "none":
	default:
		return fmt.Errorf("invalid --progress: %s", cfg.Progress)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	for _, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("mbox path is empty")
		}
	}

	return nil
}
