package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/crias/pkg/prompt"
)

func newTemplatesCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Inspect and render prompt templates",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "template directory (default from config templates.dir)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List templates and their inputs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				lib, err := a.library(dir)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tINPUTS")
				for _, name := range lib.Names() {
					t, _ := lib.Get(name)
					inputs, err := t.Inputs()
					if err != nil {
						fmt.Fprintf(tw, "%s\t(error: %v)\n", name, err)
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(inputs, ", "))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "inputs NAME",
			Short: "Print the named inputs of a template, one per line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := a.template(dir, args[0])
				if err != nil {
					return err
				}
				inputs, err := t.Inputs()
				if err != nil {
					return fmt.Errorf("template %s: %w", args[0], err)
				}
				for _, in := range inputs {
					fmt.Fprintln(cmd.OutOrStdout(), in)
				}
				return nil
			},
		},
		newTemplatesRenderCommand(a, &dir),
		newTemplatesWatchCommand(a, &dir),
	)
	return cmd
}

func newTemplatesRenderCommand(a *app, dir *string) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Render a template with --set values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.render(*dir, args[0], sets)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "template value as key=value (repeatable)")
	return cmd
}

func newTemplatesWatchCommand(a *app, dir *string) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload templates on change and report what loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := *dir
			if d == "" {
				d = a.settings.Templates.Dir
			}
			if !cmd.Flags().Changed("debounce") && a.settings.Templates.Debounce > 0 {
				debounce = a.settings.Templates.Debounce
			}

			opts, err := a.loadOptions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := prompt.NewWatcher(d, debounce, opts...)
			return w.Run(cmd.Context(), func(lib *prompt.Library, err error) {
				if err != nil {
					a.logger.Warn("template reload failed", zap.String("dir", d), zap.Error(err))
					fmt.Fprintf(out, "%s  error: %v\n", time.Now().Format(time.TimeOnly), err)
					return
				}
				fmt.Fprintf(out, "%s  %d templates: %s\n",
					time.Now().Format(time.TimeOnly), lib.Len(), strings.Join(lib.Names(), ", "))
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before reloading")
	return cmd
}

func (a *app) template(dir, name string) (prompt.Template, error) {
	lib, err := a.library(dir)
	if err != nil {
		return prompt.Template{}, err
	}
	t, ok := lib.Get(name)
	if !ok {
		return prompt.Template{}, fmt.Errorf("template %q not found", name)
	}
	return t, nil
}

func (a *app) render(dir, name string, sets []string) (string, error) {
	values, err := parseSets(sets)
	if err != nil {
		return "", err
	}
	t, err := a.template(dir, name)
	if err != nil {
		return "", err
	}
	out, err := t.Render(values)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}
