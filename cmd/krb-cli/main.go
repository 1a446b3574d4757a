package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joshp123/kiturami"
)

func main() {
	args := os.Args[1:]
	jsonOutput := false
	if len(args) > 0 && args[0] == "--json" {
		jsonOutput = true
		args = args[1:]
	}
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := kiturami.ConfigFromEnv()
	if err != nil {
		fatal("config", err)
	}
	client, err := kiturami.NewClient(cfg)
	if err != nil {
		fatal("client", err)
	}
	api := kiturami.NewAPI(client)

	// Generous budget: every API call pays the vendor courtesy delay,
	// and compound commands issue several calls.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out := outputMode{json: jsonOutput}
	runCommand(ctx, api, out, args[0], args[1:])
}

func usage() {
	fmt.Println("krb-cli [--json] <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  login")
	fmt.Println("  devices")
	fmt.Println("  info <node>")
	fmt.Println("  alive <node>")
	fmt.Println("  on <node> <slave>")
	fmt.Println("  off <node> <slave>")
	fmt.Println("  heat <node> <slave> [temp]")
	fmt.Println("  bath <node>")
	fmt.Println("  away <node> <slave>")
	fmt.Println("  reservation <node> <slave>")
	fmt.Println("  reservation-repeat <node> <slave>")
	fmt.Println("  notices")
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
