package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/khanghh/linkbot/internal/audit"
	"github.com/khanghh/linkbot/internal/bot"
	"github.com/khanghh/linkbot/internal/config"
	"github.com/khanghh/linkbot/internal/link"
	"github.com/khanghh/linkbot/params"
	"github.com/urfave/cli/v2"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
	gitTag    string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "linkbot - Discord bot that DMs authenticated form links"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitAuditLogger(logsDir string) *audit.Logger {
	auditLogger := audit.NewLogger(logsDir, os.Stdout)
	if err := auditLogger.Open(); err != nil {
		slog.Error("Failed to open audit log", "error", err)
		os.Exit(1)
	}
	return auditLogger
}

func mustInitDiscordPlatform(botToken string) *bot.DiscordPlatform {
	platform, err := bot.NewDiscordPlatform(botToken)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		os.Exit(1)
	}
	return platform
}

func run(ctx *cli.Context) error {
	// overlay .env for local development before viper reads the environment
	godotenv.Load()

	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	auditLogger := mustInitAuditLogger(cfg.LogsDir)
	defer auditLogger.Close()

	linkBuilder := link.NewBuilder(params.PrefillFormLinkTemplate)
	platform := mustInitDiscordPlatform(cfg.DiscordToken)
	router := bot.NewRouter(platform, auditLogger, linkBuilder, cfg.TestGuildID, cfg.MagicUserID)
	platform.Attach(router)

	if err := platform.Open(); err != nil {
		slog.Error("Failed to connect to discord gateway", "error", err)
		return err
	}
	defer platform.Close()

	go startHealthCheckServer(cfg.HealthCheckAddr, platform)

	slog.Info("Bot is running", "logsDir", cfg.LogsDir)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
