// Command ragctl drives the docinsight evaluation endpoints from the command line.
//
//	ragctl generate -files a.pdf,b.pdf -n 20 -out test_set.json
//	ragctl evaluate -in test_set.json -out evaluation_results.json
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `usage: ragctl <command> [flags]

commands:
  generate   synthesize a QA test set from indexed documents
  evaluate   score every test set item against the live pipeline

environment:
  DOCINSIGHT_URL      server base URL (default http://localhost:8000)
  DOCINSIGHT_API_KEY  bearer token, when the server requires one
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ragctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "generate":
		return runGenerate(ctx, args[1:], stdout, stderr)
	case "evaluate":
		return runEvaluate(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}
