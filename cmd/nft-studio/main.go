// nft-studio drives a Sui NFT mint contract from the command line and serves
// the JSON API used by the browser studio.
//
// Usage:
//
//	nft-studio serve                 Start the HTTP API
//	nft-studio nfts                  List NFTs owned under the configured contract
//	nft-studio caps                  Show the mint capability search result
//	nft-studio mint <image-url>      Mint an NFT pointing at image-url
//	nft-studio estimate [flags]      Dry-run a mint and print its gas cost
//	nft-studio upload <file>         Upload an image to IPFS
//	nft-studio address               Print the configured signer address
//	nft-studio version               Print the version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/api"
	"github.com/suinft/nft-studio-go/pkg/config"
	"github.com/suinft/nft-studio-go/pkg/sdk"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const configEnv = "NFT_STUDIO_CONFIG"

func main() {
	cmd, args, configPath := parseArgs()

	if cmd == "" || cmd == "help" || cmd == "--help" || cmd == "-h" {
		printUsage()
		if cmd == "" {
			os.Exit(1)
		}
		return
	}
	if cmd == "version" || cmd == "--version" {
		fmt.Printf("nft-studio version %s\n", version)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nft-studio: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = run(ctx, cfg, cmdServe)
	case "nfts":
		err = run(ctx, cfg, cmdNFTs)
	case "caps":
		err = run(ctx, cfg, cmdCaps)
	case "mint":
		err = run(ctx, cfg, func(ctx context.Context, core *sdk.Core) error { return cmdMint(ctx, core, args) })
	case "estimate":
		err = run(ctx, cfg, func(ctx context.Context, core *sdk.Core) error { return cmdEstimate(ctx, core, args) })
	case "upload":
		err = run(ctx, cfg, func(ctx context.Context, core *sdk.Core) error { return cmdUpload(ctx, core, args) })
	case "address":
		err = run(ctx, cfg, cmdAddress)
	default:
		fmt.Fprintf(os.Stderr, "nft-studio: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "nft-studio: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs() (command string, args []string, configPath string) {
	configPath = os.Getenv(configEnv)

	raw := os.Args[1:]
	var filtered []string
	for i := 0; i < len(raw); i++ {
		if (raw[i] == "-config" || raw[i] == "--config") && i+1 < len(raw) {
			configPath = raw[i+1]
			i++
			continue
		}
		filtered = append(filtered, raw[i])
	}

	if len(filtered) == 0 {
		return "", nil, configPath
	}
	return filtered[0], filtered[1:], configPath
}

func printUsage() {
	fmt.Printf(`nft-studio %s

Usage:
  nft-studio [-config <path>] <command> [arguments]

Commands:
  serve                      Start the HTTP API on the configured listen address
  nfts                       List NFTs owned under the configured contract
  caps                       Show the mint capability search result
  mint <image-url>           Mint an NFT pointing at image-url
  estimate [flags]           Dry-run a mint (-name, -description, -image)
  upload <file>              Upload an image to IPFS and print its gateway URL
  address                    Print the configured signer address
  version                    Print the version

The config file may be YAML, TOML or JSON; %s also selects it.
The signer key is read from private_key or %s.
`, version, configEnv, config.PrivateKeyEnv)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return &config.Config{}, nil
	}
	return config.LoadFile(path)
}

func run(ctx context.Context, cfg *config.Config, fn func(context.Context, *sdk.Core) error) error {
	core, err := sdk.NewSDK(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(ctx, core)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdServe(ctx context.Context, core *sdk.Core) error {
	srv := api.NewServer(&api.ServerConfig{
		Address:        core.Listen,
		AllowedOrigins: core.AllowedOrigins,
		RatePerMinute:  core.RatePerMinute,
		EnableMetrics:  true,
	}, core)

	if core.Session().Account() != "" {
		if err := core.Session().Refresh(ctx); err != nil {
			zap.L().Warn("initial refresh failed", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cmdNFTs(ctx context.Context, core *sdk.Core) error {
	if err := requireAccount(core); err != nil {
		return err
	}
	if err := core.Session().Refresh(ctx); err != nil {
		return err
	}
	st := core.Session().State()
	if len(st.NFTs) == 0 {
		fmt.Printf("No NFTs found for %s under %s.\n", st.Account, st.Contract.Target())
		return nil
	}
	return printJSON(st.NFTs)
}

func cmdCaps(ctx context.Context, core *sdk.Core) error {
	if err := requireAccount(core); err != nil {
		return err
	}
	err := core.Session().Refresh(ctx)
	c := core.Session().State().Capability
	switch {
	case c.Err != nil:
		return errors.New(c.Reason)
	case c.Found:
		fmt.Printf("Mint capability: %s\n", c.CapabilityID)
	case c.Reason != "":
		fmt.Println(c.Reason)
	}
	return err
}

func cmdMint(ctx context.Context, core *sdk.Core, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: nft-studio mint <image-url>")
	}
	res, err := core.Session().Mint(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("NFT minted successfully! Transaction: %s\n", res.Digest)
	if core.Network.Explorer != "" {
		fmt.Printf("Explorer: %s/tx/%s\n", strings.TrimRight(core.Network.Explorer, "/"), res.Digest)
	}
	return nil
}

func cmdEstimate(ctx context.Context, core *sdk.Core, args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	name := fs.String("name", "", "NFT name (default: sample value)")
	description := fs.String("description", "", "NFT description (default: sample value)")
	image := fs.String("image", "", "image URL (default: sample value)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if core.Session().Account() != "" {
		if err := core.Session().Refresh(ctx); err != nil {
			zap.L().Warn("refresh before estimate failed", zap.Error(err))
		}
	}
	est, err := core.Session().EstimateGas(ctx, sdk.EstimateInput{Name: *name, Description: *description, ImageURL: *image})
	if err != nil {
		return err
	}
	if !est.Succeeded() {
		fmt.Println(est.Error)
		if est.Fallback {
			fmt.Println(est.FallbackMessage)
		}
		return nil
	}
	fmt.Printf("Estimated cost: %s SUI\n", est.TotalCost)
	fmt.Printf("  computation:    %s SUI\n", est.ComputationCost)
	fmt.Printf("  storage:        %s SUI\n", est.StorageCost)
	fmt.Printf("  storage rebate: %s SUI\n", est.StorageRebate)
	return nil
}

func cmdUpload(ctx context.Context, core *sdk.Core, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: nft-studio upload <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	up, err := core.UploadImage(ctx, f.Name(), f)
	if err != nil {
		return err
	}
	return printJSON(up)
}

func cmdAddress(_ context.Context, core *sdk.Core) error {
	if err := requireAccount(core); err != nil {
		return err
	}
	fmt.Println(core.Session().Account())
	return nil
}

func requireAccount(core *sdk.Core) error {
	if core.Session().Account() == "" {
		return fmt.Errorf("no signer configured: set private_key or %s", config.PrivateKeyEnv)
	}
	return nil
}
