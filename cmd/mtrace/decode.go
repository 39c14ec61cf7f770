package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/exporter"
	"mtracecli/internal/services"
	"mtracecli/pkg/contracts/domain"
)

type decodeOutput struct {
	Events  []domain.EventEnvelope    `json:"events"`
	Skipped []services.SkippedSection `json:"skipped"`
}

func newDecodeCmd(e *env) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "decode [BLOB]",
		Short: "Decode a single compliance annotation blob",
		Long: `Decode parses one policy, classification or sensitivity label annotation
and prints the resulting events as JSON. Sections the decoder could not
interpret are listed under "skipped".`,
		Example: `  mtrace decode 'S:DPA=DPR|ruleId=abc|predicate=CCSI|timeSpent=3;'
  pbpaste | mtrace decode --stdin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := readBlob(cmd.InOrStdin(), args, fromStdin)
			if err != nil {
				return err
			}

			svc, err := services.NewAnalysisService(e.cfg.Analysis, nil, e.logger)
			if err != nil {
				return err
			}

			res := svc.Decode(cmd.Context(), blob)
			return exporter.EncodeJSON(cmd.OutOrStdout(), decodeOutput{
				Events:  exporter.Envelopes(nil, res.Events),
				Skipped: res.Skipped,
			})
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the blob from standard input")
	return cmd
}

func readBlob(in io.Reader, args []string, fromStdin bool) (string, error) {
	switch {
	case fromStdin && len(args) > 0:
		return "", apperrors.NewAppValidationError("pass the blob as an argument or with --stdin, not both")
	case fromStdin:
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", apperrors.NewAppValidationError("a blob argument or --stdin is required")
	}
}
