package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nachoal/visionari-go/config"
	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/llm"
	"github.com/nachoal/visionari-go/logging"
	"github.com/nachoal/visionari-go/tui"
)

var (
	// Flags
	imagePath string

	// Root command
	rootCmd = &cobra.Command{
		Use:          "visionari",
		Short:        "Ask questions about an image",
		Long:         "Visionari - pick an image, ask a question about it and read the answer from a Groq-hosted vision model",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	// Ask command for one-shot queries
	askCmd = &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask one question about --image and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	consoleCmd = &cobra.Command{
		Use:   "console",
		Short: "Line-oriented session: type queries, change image and sampling with : commands",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api-key", "", "Groq API key (defaults to $GROQ_API_KEY)")
	pf.String("base-url", "", "Chat completions base URL")
	pf.String("model", "", "Vision model id")
	pf.Duration("timeout", 0, "Request timeout (0 uses the client default)")
	pf.String("preset", "", "Sampling preset: default or classic")
	pf.Int("max-tokens", 0, "Max tokens to generate")
	pf.Float64("temperature", 0, "Sampling temperature in [0,1]")
	pf.Float64("top-p", 0, "Nucleus sampling top_p in (0,1]")
	pf.String("theme", "", "Color theme: default, dracula or nord")
	pf.BoolP("debug", "d", false, "Write debug logs to the log file")
	pf.String("log-file", "", "Log file used when --debug is set")
	pf.StringVarP(&imagePath, "image", "i", "", "Image to start with (.png, .jpeg, .jpg)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the resolved config with the logger and controller built from it
type app struct {
	cfg    config.Config
	logger log.Interface
	ctrl   *controller.Controller
	close  func() error
}

func setup(cmd *cobra.Command) (*app, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if err := manager.BindFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	cfg := manager.Config()

	logger, closeLog, err := logging.Setup(cfg.Debug, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	factory := controller.GroqFactory(
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithTimeout(cfg.Timeout),
		llm.WithModel(cfg.Model),
	)
	ctrl := controller.New(factory,
		controller.WithModel(cfg.Model),
		controller.WithDefaults(cfg.Sampling()),
		controller.WithLogger(logger),
	)

	logger.WithFields(log.Fields{
		"command": cmd.Name(),
		"model":   ctrl.Model(),
		"preset":  cfg.Preset,
	}).Debug("starting")

	return &app{cfg: cfg, logger: logger, ctrl: ctrl, close: closeLog}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	wd, _ := os.Getwd()
	model := tui.New(rt.ctrl, tui.Options{
		APIKey:    rt.cfg.APIKey,
		ImagePath: imagePath,
		Theme:     rt.cfg.Theme,
		StartDir:  wd,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	out, err := rt.cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// describe renders a controller error the way the TUI titles its notices
func describe(err error) error {
	return fmt.Errorf("%s: %s", controller.Category(err), controller.Message(err))
}
