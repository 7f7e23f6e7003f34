// Package cli implements the crias command tree.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/crias/internal/config"
	"github.com/HerbHall/crias/internal/version"
	"github.com/HerbHall/crias/pkg/llm"
	"github.com/HerbHall/crias/pkg/llm/openai"
	"github.com/HerbHall/crias/pkg/llm/providers"
	"github.com/HerbHall/crias/pkg/prompt"
)

// app carries state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE before any RunE executes.
type app struct {
	cfgFile string
	verbose bool

	v        *viper.Viper
	settings config.Settings
	logger   *zap.Logger
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "crias",
		Short:         "Chat completions and prompt templates from the command line",
		Long:          "crias sends chat completion requests to OpenAI-compatible endpoints and manages prompt template libraries.",
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate(version.Info() + "\n")

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path (default: crias.{toml,yaml,json} in . or ~/.config/crias)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCommand(),
		newModelsCommand(),
		newCompleteCommand(a),
		newBatchCommand(a),
		newTemplatesCommand(a),
	)
	return root
}

// Execute runs the command tree with ctx and returns the first error.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) init() error {
	v, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		v.Set("logging.level", "debug")
	}

	settings, err := config.Decode(v)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	a.v = v
	a.settings = settings
	a.logger = logger
	return nil
}

// client resolves model (or the configured default) into a ready client.
func (a *app) client(model string) (llm.LLM, error) {
	if model == "" {
		model = a.settings.LLM.Model
	}
	cfg := a.settings.LLM.OpenAIConfig()

	opts := []openai.Option{
		openai.WithTimeout(cfg.Timeout),
		openai.WithLogger(a.logger.Named("llm")),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if l := a.settings.LLM.Limiter(); l != nil {
		opts = append(opts, openai.WithRateLimiter(l))
	}
	return providers.Resolve(model, cfg.APIKey, opts...)
}

// library loads the template directory, preferring dir over the configured one.
func (a *app) library(dir string) (*prompt.Library, error) {
	if dir == "" {
		dir = a.settings.Templates.Dir
	}
	opts, err := a.loadOptions()
	if err != nil {
		return nil, err
	}
	return prompt.FromDirectory(dir, opts...)
}

func (a *app) loadOptions() ([]prompt.LoadOption, error) {
	opts := []prompt.LoadOption{prompt.WithLogger(a.logger.Named("templates"))}
	if a.settings.Templates.StrictNames {
		opts = append(opts, prompt.WithStrictNames())
	}
	if names := a.settings.Templates.Formats; len(names) > 0 {
		formats := make([]prompt.Format, 0, len(names))
		for _, name := range names {
			f, ok := prompt.FormatFromPath("." + strings.TrimPrefix(strings.TrimSpace(name), "."))
			if !ok {
				return nil, fmt.Errorf("templates.formats: unsupported format %q", name)
			}
			formats = append(formats, f)
		}
		opts = append(opts, prompt.WithFormats(formats...))
	}
	return opts, nil
}
