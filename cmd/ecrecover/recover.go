package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mahdiidarabi/ecdsa-recover/pkg/ecrecover"
	"github.com/urfave/cli/v3"
)

func recoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover",
		Usage: "Recover the signer of a single signature",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "digest",
				Usage:    "32-byte message digest (hex)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "v",
				Usage: "Recovery identifier (27 or 28)",
			},
			&cli.StringFlag{
				Name:  "r",
				Usage: "r component (hex)",
			},
			&cli.StringFlag{
				Name:  "s",
				Usage: "s component (hex)",
			},
			&cli.StringFlag{
				Name:  "signature",
				Usage: "65-byte compact signature r || s || v (hex), instead of --v/--r/--s",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output in JSON format",
			},
		},
		Action: runRecoverCommand,
	}
}

type recoverOutput struct {
	Signer string `json:"signer,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func runRecoverCommand(ctx context.Context, cmd *cli.Command) error {
	digest, err := ecrecover.ParseWord(cmd.String("digest"))
	if err != nil {
		return fmt.Errorf("failed to parse digest: %w", err)
	}
	sig, err := signatureFromFlags(cmd)
	if err != nil {
		return err
	}

	validator, _, release, err := newValidator(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	signer, recErr := validator.RecoverSignature(ctx, digest, sig)

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		out := recoverOutput{}
		if recErr != nil {
			out.Error, out.Kind = recErr.Error(), ecrecover.Classify(recErr)
		} else {
			out.Signer = signer.Hex()
		}
		b, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(w, string(b))
	} else if recErr == nil {
		fmt.Fprintln(w, signer.Hex())
	}

	if recErr != nil {
		return fmt.Errorf("recovery failed: %w", recErr)
	}
	return nil
}

func signatureFromFlags(cmd *cli.Command) (ecrecover.Signature, error) {
	if compact := cmd.String("signature"); compact != "" {
		if cmd.IsSet("v") || cmd.IsSet("r") || cmd.IsSet("s") {
			return ecrecover.Signature{}, fmt.Errorf("--signature cannot be combined with --v, --r or --s")
		}
		sig, err := ecrecover.ParseCompactSignature(common.FromHex(compact))
		if err != nil {
			return ecrecover.Signature{}, fmt.Errorf("failed to parse signature: %w", err)
		}
		return sig, nil
	}

	if !cmd.IsSet("v") || cmd.String("r") == "" || cmd.String("s") == "" {
		return ecrecover.Signature{}, fmt.Errorf("either --signature or all of --v, --r and --s must be provided")
	}
	v := cmd.Int("v")
	if v < 0 || v > 255 {
		return ecrecover.Signature{}, fmt.Errorf("v must fit in one byte, got %d", v)
	}
	r, err := ecrecover.ParseWord(cmd.String("r"))
	if err != nil {
		return ecrecover.Signature{}, fmt.Errorf("failed to parse r: %w", err)
	}
	s, err := ecrecover.ParseWord(cmd.String("s"))
	if err != nil {
		return ecrecover.Signature{}, fmt.Errorf("failed to parse s: %w", err)
	}
	return ecrecover.Signature{V: uint8(v), R: r, S: s}, nil
}
