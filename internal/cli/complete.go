package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HerbHall/crias/pkg/llm"
)

// generationFlags are shared by commands that send completions.
type generationFlags struct {
	model       string
	system      string
	maxTokens   int
	temperature float64
	asJSON      bool
}

func (g *generationFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&g.model, "model", "m", "", "model name (default from config llm.model)")
	f.StringVarP(&g.system, "system", "s", "", "system message")
	f.IntVar(&g.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	f.Float64Var(&g.temperature, "temperature", 0, "sampling temperature")
	f.BoolVar(&g.asJSON, "json", false, "print the full completion as JSON")
}

// params returns request overrides for messages plus any flags the user set.
func (g *generationFlags) params(cmd *cobra.Command, messages []llm.Message) llm.Params {
	p := llm.Params{"messages": messages}
	if cmd.Flags().Changed("max-tokens") {
		p["max_tokens"] = g.maxTokens
	}
	if cmd.Flags().Changed("temperature") {
		p["temperature"] = g.temperature
	}
	return p
}

func (g *generationFlags) messages(user string) []llm.Message {
	opts := []llm.MessageOption{llm.WithUser(user)}
	if g.system != "" {
		opts = append(opts, llm.WithSystem(g.system))
	}
	return llm.BuildMessages(opts...)
}

func newCompleteCommand(a *app) *cobra.Command {
	var (
		gen      generationFlags
		user     string
		template string
		dir      string
		sets     []string
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Send one chat completion request",
		Example: `  crias complete --system "You are terse." --user "Name three primes."
  crias complete --template summarize --set topic=Go --set words=50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user != "" && template != "" {
				return errors.New("--user and --template are mutually exclusive")
			}
			if template != "" {
				rendered, err := a.render(dir, template, sets)
				if err != nil {
					return err
				}
				user = rendered
			}
			if user == "" {
				return errors.New("a user prompt is required: pass --user or --template")
			}

			client, err := a.client(gen.model)
			if err != nil {
				return err
			}
			completion, err := client.Create(cmd.Context(), gen.params(cmd, gen.messages(user)))
			if err != nil {
				return err
			}
			return printCompletion(cmd.OutOrStdout(), completion, gen.asJSON)
		},
	}

	gen.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&user, "user", "u", "", "user message")
	f.StringVarP(&template, "template", "t", "", "render the user message from this template")
	f.StringVar(&dir, "dir", "", "template directory (default from config templates.dir)")
	f.StringArrayVar(&sets, "set", nil, "template value as key=value (repeatable)")
	return cmd
}

func printCompletion(w io.Writer, c *llm.Completion, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	_, err := fmt.Fprintln(w, c.Content())
	return err
}

// parseSets turns repeated key=value flags into template values.
func parseSets(sets []string) (map[string]any, error) {
	values := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		values[key] = value
	}
	return values, nil
}
