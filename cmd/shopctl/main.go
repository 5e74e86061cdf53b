// Command shopctl is a terminal shopper for the storefront: a local cart and
// wishlist kept on disk, login, and checkout against the HTTP API.
//
// Usage:
//
//	shopctl [-dir path] [-api url] <command> [subcommand] [flags]
//
// Commands:
//
//	login     -email -password
//	logout
//	cart      list | add -id [-qty] | rm -id | set -id -qty | clear
//	wish      list | toggle -id | move -id | pull | push
//	checkout  -name -lastname -phone -email -company -address -apartment
//	          -postal -city -country [-notice]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MikeMC777/storefront-ecom/internal/client"
	"github.com/MikeMC777/storefront-ecom/internal/config"
	"github.com/MikeMC777/storefront-ecom/internal/localstore"
	"github.com/MikeMC777/storefront-ecom/internal/logs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	global := flag.NewFlagSet("shopctl", flag.ExitOnError)
	dir := global.String("dir", defaultDir(), "directory holding the local cart, wishlist and session")
	api := global.String("api", cfg.APIBaseURL, "storefront API base URL")
	global.Usage = printUsage
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logs.NewWithWriter(os.Stderr, cfg.LogLevel, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := localstore.NewFileStore(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{api: client.New(*api), store: store, out: os.Stdout, log: log}
	if err := a.run(ctx, global.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultDir() string {
	if d := os.Getenv("SHOPCTL_HOME"); d != "" {
		return d
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".shopctl"
	}
	return filepath.Join(base, "shopctl")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: shopctl [-dir path] [-api url] <command> [subcommand] [flags]

Commands:
  login     -email -password        sign in and keep the session
  logout                            forget the session
  cart      list|add|rm|set|clear   manage the local cart
  wish      list|toggle|move|pull|push
                                    manage the local wishlist
  checkout  contact flags           place an order for the cart`)
}
