package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mahdiidarabi/ecdsa-recover/pkg/ecrecover"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Recover the signers of every request in a JSON or CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the request file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Request file format (json or csv); inferred from the extension when empty",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of parallel workers (0 = auto-detect based on CPU cores)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output one JSON object per request",
			},
		},
		Action: runBatchCommand,
	}
}

type batchOutput struct {
	Index  int    `json:"index"`
	Signer string `json:"signer,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Match  *bool  `json:"match,omitempty"`
}

func parserFor(file, format string) (ecrecover.SignatureParser, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	}
	switch format {
	case "json":
		return &ecrecover.JSONParser{}, nil
	case "csv":
		return &ecrecover.CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want json or csv)", format)
	}
}

func runBatchCommand(ctx context.Context, cmd *cli.Command) error {
	file := cmd.String("file")
	parser, err := parserFor(file, cmd.String("format"))
	if err != nil {
		return err
	}
	requests, err := parser.ParseRequests(file)
	if err != nil {
		return fmt.Errorf("failed to parse requests: %w", err)
	}

	validator, log, release, err := newValidator(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	results := validator.RecoverBatch(ctx, requests, int(cmd.Int("workers")))

	w := cmd.Root().Writer
	recovered := 0
	for _, res := range results {
		out := batchOutput{Index: res.Index}
		if res.Err != nil {
			out.Error, out.Kind = res.Err.Error(), ecrecover.Classify(res.Err)
		} else {
			recovered++
			out.Signer = res.Address.Hex()
		}
		if res.Request.Signer != nil {
			match := res.Matches()
			out.Match = &match
		}

		if cmd.Bool("json") {
			b, err := json.Marshal(out)
			if err != nil {
				return fmt.Errorf("failed to marshal output: %w", err)
			}
			fmt.Fprintln(w, string(b))
			continue
		}
		fmt.Fprintln(w, formatLine(out))
	}

	log.WithFields(logrus.Fields{
		"requests":  len(results),
		"recovered": recovered,
		"rejected":  len(results) - recovered,
	}).Info("batch recovery finished")
	return nil
}

func formatLine(out batchOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] ", out.Index)
	if out.Error != "" {
		kind := out.Kind
		if kind == "" {
			kind = "Error"
		}
		fmt.Fprintf(&b, "%s: %s", kind, out.Error)
	} else {
		b.WriteString(out.Signer)
	}
	if out.Match != nil {
		if *out.Match {
			b.WriteString(" ✓ matches expected signer")
		} else {
			b.WriteString(" ✗ expected signer differs")
		}
	}
	return b.String()
}
