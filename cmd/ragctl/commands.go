package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/docinsight/pkg/client"
)

const defaultURL = "http://localhost:8000"

// commonFlags are shared by every subcommand.
type commonFlags struct {
	url    string
	apiKey string
	files  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.url, "url", envOr("DOCINSIGHT_URL", defaultURL), "docinsight base URL")
	fs.StringVar(&c.apiKey, "api-key", os.Getenv("DOCINSIGHT_API_KEY"), "bearer token")
	fs.StringVar(&c.files, "files", "", "comma-separated filenames to restrict to (default: all)")
}

func (c *commonFlags) client() (*client.Client, error) {
	return client.New(c.url, client.WithAPIKey(c.apiKey))
}

func (c *commonFlags) fileList() []string {
	var out []string
	for _, f := range strings.Split(c.files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func runGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	n := fs.Int("n", 20, "number of QA pairs to request")
	out := fs.String("out", "test_set.json", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("-n must be positive")
	}

	c, err := common.client()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Generating %d synthetic QA pairs...\n", *n)
	items, err := c.GenerateTestSet(ctx, common.fileList(), *n)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, it := range items {
		fmt.Fprintf(stdout, "Generated pair for %s\n", it.SourceFile)
	}

	if err := writeJSON(*out, items); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %d QA pairs to %s\n", len(items), *out)
	return nil
}

func runEvaluate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	in := fs.String("in", "test_set.json", "test set file")
	out := fs.String("out", "evaluation_results.json", "results file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := readTestSet(*in)
	if err != nil {
		return err
	}
	c, err := common.client()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Evaluating %d questions...\n", len(items))

	results := make([]client.ScoredResult, 0, len(items))
	sum, scored := 0, 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nQ: %s\n", it.Question)

		res, err := c.RunSingle(ctx, it.Question, it.TrueAnswer, common.fileList())
		if err != nil {
			fmt.Fprintf(stdout, "Error evaluating: %v\n", err)
			continue
		}
		fmt.Fprintf(stdout, "RAG Answer: %s\nScore: %d\n", res.GeneratedAnswer, res.Score)

		results = append(results, res)
		if res.Score >= 1 && res.Score <= 5 {
			sum += res.Score
			scored++
		}
	}

	avg := 0.0
	if scored > 0 {
		avg = float64(sum) / float64(scored)
	}
	fmt.Fprintf(stdout, "\nAverage Score: %.2f/5 (%d of %d scored)\n", avg, scored, len(items))

	if err := writeJSON(*out, results); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Results saved to %s\n", *out)
	return nil
}

// readTestSet accepts a bare array or the API's {"test_set": [...]} envelope.
func readTestSet(path string) ([]client.QAItem, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found; run 'ragctl generate' first", path)
		}
		return nil, fmt.Errorf("read test set: %w", err)
	}

	var items []client.QAItem
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		TestSet []client.QAItem `json:"test_set"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse test set %s: %w", path, err)
	}
	return wrapped.TestSet, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
