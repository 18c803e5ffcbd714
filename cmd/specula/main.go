package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/specula/internal/app"
	"github.com/ternarybob/specula/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	// The external scheduler treats a non-zero exit as a failed run to
	// retry, so internal failures are logged and even a panic exits zero
	// after the crash file is written.
	defer common.RecoverWithCrashFile()
	common.InstallCrashHandler("")

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Specula version %s\n", common.GetVersion())
		return
	}

	// Credentials may live in a .env file beside the binary or in the
	// working directory; missing files are fine.
	_ = godotenv.Load(".env", envBesideExecutable())

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	if len(configFiles) == 0 {
		configFiles = discoverConfig()
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		arbor.NewLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		return
	}
	if err := config.Validate(); err != nil {
		arbor.NewLogger().Error().Err(err).Msg("Configuration failed validation")
		return
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.LoadVersionFromFile())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")

	application := app.New(config, logger)

	// SIGINT/SIGTERM ends a listening window early; the run still exits
	// zero so the scheduler never retries it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatch(ctx, application, flag.Args())
}

// dispatch routes the positional command. Unknown or missing commands print
// usage; every path returns normally so the process exits zero.
func dispatch(ctx context.Context, application *app.App, args []string) {
	if len(args) == 0 {
		printUsage()
		return
	}

	window := application.Config.Telegram.DefaultWindowDuration()

	switch args[0] {
	case "run":
		delivered := application.RunOnce(ctx)
		application.Logger.Info().Bool("delivered", delivered).Msg("Run complete")
	case "once":
		handled := application.RespondOnce(ctx, window)
		application.Logger.Info().Int("handled", handled).Msg("Single-response window closed")
	case "poll":
		if len(args) > 1 {
			if minutes, err := strconv.Atoi(args[1]); err == nil && minutes > 0 {
				window = time.Duration(minutes) * time.Minute
			} else {
				application.Logger.Warn().Str("minutes", args[1]).Msg("Invalid poll window, using default")
			}
		}
		handled := application.Listen(ctx, window)
		application.Logger.Info().Int("handled", handled).Dur("window", window).Msg("Polling window closed")
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: specula [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run              Fetch indicators, evaluate, and send the panel now")
	fmt.Println("  once             Wait for one /status command, answer it, then exit")
	fmt.Println("  poll <minutes>   Answer /status commands for the given window")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// envBesideExecutable returns the path of a .env file next to the binary.
func envBesideExecutable() string {
	execPath, err := os.Executable()
	if err != nil {
		return ".env"
	}
	return filepath.Join(filepath.Dir(execPath), ".env")
}

// discoverConfig looks for specula.toml in the working directory, then
// beside the executable.
func discoverConfig() configPaths {
	if _, err := os.Stat("specula.toml"); err == nil {
		return configPaths{"specula.toml"}
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "specula.toml")
		if _, err := os.Stat(candidate); err == nil {
			return configPaths{candidate}
		}
	}
	return nil
}
