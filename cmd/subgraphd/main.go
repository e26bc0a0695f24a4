// Subgraphd CLI — инструмент командной строки для постановки
// ensure/remove и просмотра actions, rules и узлов через HTTP API.
//
// Использование:
//
//	subgraphd [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	deployment  ensure / remove
//	action      list / show
//	rule        list / show
//	node        list
package main

import (
	"fmt"
	"os"

	"github.com/shaiso/Subgraphd/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd := cli.NewRootCmd(clientFn, outputFn)
	rootCmd.Version = version

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("SUBGRAPHD_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
