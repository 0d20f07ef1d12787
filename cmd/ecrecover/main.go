package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mahdiidarabi/ecdsa-recover/pkg/ecrecover"
	"github.com/mahdiidarabi/ecdsa-recover/pkg/oracle"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ecrecover",
		Usage: "Recover ECDSA signers, rejecting malleable signatures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Ethereum JSON-RPC endpoint running the recovery precompile (empty = local software oracle)",
				Sources: cli.EnvVars("ECRECOVER_RPC_URL"),
			},
			&cli.StringFlag{
				Name:    "oracle-address",
				Usage:   "Address of the recovery oracle",
				Value:   oracle.EcrecoverAddress.Hex(),
				Sources: cli.EnvVars("ECRECOVER_ORACLE_ADDRESS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (panic, fatal, error, warn, info, debug, trace)",
				Value:   "info",
				Sources: cli.EnvVars("ECRECOVER_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			recoverCommand(),
			batchCommand(),
		},
	}
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log := logrus.New()
	log.Out = out
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	log.SetLevel(lvl)
	return log, nil
}

// newValidator builds a validator from the global flags. The returned
// function releases the oracle connection.
func newValidator(ctx context.Context, cmd *cli.Command) (*ecrecover.Validator, *logrus.Logger, func(), error) {
	errOut := cmd.Root().ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	log, err := newLogger(cmd.String("log-level"), errOut)
	if err != nil {
		return nil, nil, nil, err
	}

	addrHex := cmd.String("oracle-address")
	if !common.IsHexAddress(addrHex) {
		return nil, nil, nil, fmt.Errorf("invalid oracle address: %s", addrHex)
	}
	addr := common.HexToAddress(addrHex)

	var caller oracle.Caller
	release := func() {}
	if url := cmd.String("rpc-url"); url != "" {
		eth, err := oracle.DialEthCaller(ctx, url)
		if err != nil {
			return nil, nil, nil, err
		}
		caller, release = eth, eth.Close
		log.WithFields(logrus.Fields{"url": url, "oracle": addr.Hex()}).Debug("using remote recovery oracle")
	} else {
		caller = oracle.NewSoftware().WithAddress(addr)
		log.WithField("oracle", addr.Hex()).Debug("using software recovery oracle")
	}

	client := oracle.NewClient(caller).WithAddress(addr)
	return ecrecover.NewValidator(client).WithLogger(log), log, release, nil
}
