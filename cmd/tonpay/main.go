package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/vitwit/tonpay"
	"github.com/vitwit/tonpay/config"
	"github.com/vitwit/tonpay/core"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/types"
)

var app = cli.Command{
	Name:  "tonpay",
	Usage: "Create, inspect and wait for payments",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file, TONPAY_* variables override it",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log requests to stderr",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "create",
			Usage:     "Create a payment and print the transaction that pays it",
			ArgsUsage: "<amount>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "asset", Usage: "ton, btc, eth or bnb"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				amount := c.Args().First()
				if amount == "" {
					return fmt.Errorf("amount is required")
				}
				return withServer(c, func(s *tonpay.Server) error {
					out, err := s.CreatePaymentWithTransaction(ctx, core.CreateParams{
						Amount: amount,
						Asset:  types.Asset(c.String("asset")),
					})
					if err != nil {
						return err
					}
					return printJSON(out)
				})
			},
		},
		{
			Name:      "check",
			Usage:     "Print the current state of a payment",
			ArgsUsage: "<payment-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withServer(c, func(s *tonpay.Server) error {
					resp, err := s.GetPayment(ctx, c.Args().First())
					if err != nil {
						return err
					}
					return printJSON(resp)
				})
			},
		},
		{
			Name:      "wait",
			Usage:     "Poll a payment until it settles",
			ArgsUsage: "<payment-id>",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "timeout", Usage: "Give up after this long (default: poll_timeout)"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				return withServer(c, func(s *tonpay.Server) error {
					resp, err := s.WaitForPayment(ctx, c.Args().First(), c.Duration("timeout"))
					if err != nil {
						return err
					}
					return printJSON(resp)
				})
			},
		},
		{
			Name:  "version",
			Usage: "Print version information",
			Action: func(ctx context.Context, c *cli.Command) error {
				return printJSON(tonpay.GetVersion())
			},
		},
	},
}

func withServer(c *cli.Command, fn func(*tonpay.Server) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	level := "error"
	if c.Bool("verbose") {
		level = "debug"
	}

	s, err := tonpay.NewServer(cfg, tonpay.WithLogger(logger.NewZerologLogger(level, os.Stderr, true)))
	if err != nil {
		return err
	}
	return fn(s)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
