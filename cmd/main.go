package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname"
	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/config"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/sdk"
	"github.com/everFinance/arname/vm"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "arname",
		Usage: "name registry node and tools",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "run the node",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "./config.yaml", Usage: "yaml config path", EnvVars: []string{"CONFIG"}},
					&cli.StringFlag{Name: "port", Usage: "overrides the config port", EnvVars: []string{"PORT"}},
					&cli.StringFlag{Name: "sentry_dsn", Usage: "overrides the config sentry dsn", EnvVars: []string{"SENTRY_DSN"}},
				},
				Action: run,
			},
			{
				Name:   "keygen",
				Usage:  "generate a secp256k1 key",
				Flags:  []cli.Flag{prefixFlag()},
				Action: keygen,
			},
			{
				Name:   "address",
				Usage:  "print the address of a key",
				Flags:  []cli.Flag{keyFlag(), prefixFlag()},
				Action: address,
			},
			{
				Name:  "sign-register",
				Usage: "backend signature for a registration",
				Flags: []cli.Flag{
					keyFlag(),
					&cli.StringFlag{Name: "chain_id", Required: true},
					&cli.StringFlag{Name: "sender", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.Uint64Flag{Name: "durations", Value: schema.SecondsPerYear},
					&cli.StringSliceFlag{Name: "bech32_prefixes"},
				},
				Action: signRegister,
			},
			{
				Name:  "sign-extend",
				Usage: "backend signature for an extension",
				Flags: []cli.Flag{
					keyFlag(),
					&cli.StringFlag{Name: "chain_id", Required: true},
					&cli.StringFlag{Name: "sender", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.Uint64Flag{Name: "old_expires", Required: true},
					&cli.Uint64Flag{Name: "durations", Value: schema.SecondsPerYear},
				},
				Action: signExtend,
			},
			{
				Name:  "register",
				Usage: "register a name through a node",
				Flags: []cli.Flag{
					keyFlag(),
					&cli.StringFlag{Name: "url", Value: "http://127.0.0.1:8080", EnvVars: []string{"ARNAME_URL"}},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.Uint64Flag{Name: "durations", Value: schema.SecondsPerYear},
					&cli.StringSliceFlag{Name: "bech32_prefixes"},
					&cli.StringFlag{Name: "backend_sig", Usage: "hex, empty when sent by the admin"},
				},
				Action: register,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func keyFlag() cli.Flag {
	return &cli.StringFlag{Name: "key", Required: true, Usage: "hex secp256k1 private key", EnvVars: []string{"KEY"}}
}

func prefixFlag() cli.Flag {
	return &cli.StringFlag{Name: "prefix", Value: "aura", Usage: "bech32 prefix"}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}
	if dsn := c.String("sentry_dsn"); dsn != "" {
		cfg.SentryDsn = dsn
	}
	if cfg.SentryDsn != "" {
		if err := common.InitSentry(cfg.SentryDsn, cfg.ChainId); err != nil {
			return err
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	a, err := arname.New(cfg)
	if err != nil {
		return err
	}
	a.Run()

	<-signals
	a.Close()
	return nil
}

func keygen(c *cli.Context) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	pub := crypto.CompressPubkey(&key.PublicKey)
	addr, err := vm.AccountAddress(c.String("prefix"), pub)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"privateKey": hex.EncodeToString(crypto.FromECDSA(key)),
		"publicKey":  hex.EncodeToString(pub),
		"address":    addr,
	})
}

func address(c *cli.Context) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.String("key"), "0x"))
	if err != nil {
		return err
	}
	addr, err := vm.AccountAddress(c.String("prefix"), crypto.CompressPubkey(&key.PublicKey))
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

func signRegister(c *cli.Context) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.String("key"), "0x"))
	if err != nil {
		return err
	}
	b := sdk.NewBackend(key, c.String("chain_id"))
	sig, err := b.SignRegister(c.String("sender"), c.String("name"), schema.Metadata{
		Bech32Prefixes: c.StringSlice("bech32_prefixes"),
		Durations:      c.Uint64("durations"),
	})
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(sig))
	return nil
}

func signExtend(c *cli.Context) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.String("key"), "0x"))
	if err != nil {
		return err
	}
	b := sdk.NewBackend(key, c.String("chain_id"))
	sig, err := b.SignExtend(c.String("sender"), c.String("name"), c.Uint64("old_expires"), c.Uint64("durations"))
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(sig))
	return nil
}

func register(c *cli.Context) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.String("key"), "0x"))
	if err != nil {
		return err
	}
	var sig []byte
	if s := c.String("backend_sig"); s != "" {
		if sig, err = hex.DecodeString(strings.TrimPrefix(s, "0x")); err != nil {
			return err
		}
	}
	s, err := sdk.NewSDK(c.String("url"), key)
	if err != nil {
		return err
	}
	res, err := s.Register(c.String("name"), schema.Metadata{
		Bech32Prefixes: c.StringSlice("bech32_prefixes"),
		Durations:      c.Uint64("durations"),
	}, sig)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v interface{}) error {
	by, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(by))
	return nil
}
