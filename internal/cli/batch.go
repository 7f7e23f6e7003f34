package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/crias/pkg/llm"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		gen         generationFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Send one completion per non-empty line of FILE (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := readPrompts(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if len(prompts) == 0 {
				return errors.New("no prompts found")
			}

			client, err := a.client(gen.model)
			if err != nil {
				return err
			}
			requests := make([]llm.Params, len(prompts))
			for i, p := range prompts {
				requests[i] = gen.params(cmd, gen.messages(p))
			}

			a.logger.Debug("running batch",
				zap.Int("prompts", len(prompts)),
				zap.Int("concurrency", concurrency),
			)
			completions, err := llm.CreateAll(cmd.Context(), client, requests, concurrency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if gen.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(completions)
			}
			for i, c := range completions {
				if _, err := fmt.Fprintf(out, "[%d] %s\n", i+1, c.Content()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	gen.register(cmd)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "maximum requests in flight (0 for unbounded)")
	return cmd
}

func readPrompts(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening prompts: %w", err)
		}
		defer f.Close()
		r = f
	}

	var prompts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}
	return prompts, nil
}
