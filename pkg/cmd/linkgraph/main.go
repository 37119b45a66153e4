package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gilchrisn/linkage-graph-service/pkg/config"
	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
	"github.com/gilchrisn/linkage-graph-service/pkg/pipeline"
	"github.com/gilchrisn/linkage-graph-service/pkg/result"
	"github.com/gilchrisn/linkage-graph-service/pkg/validation"
)

const usage = `Usage: linkgraph (-request FILE | -csv FILE | -sample) [options]

Runs one linkage analysis and prints the graph, metrics and layout.

Options:
`

// options holds the parsed command line
type options struct {
	requestFile string
	csvFile     string
	sample      bool
	configFile  string
	outFile     string
	format      string

	layout     string
	spacing    float64
	iterations int
	seed       int64
	timeoutMS  int64
	topK       int
	community  string
	foldCase   bool

	set map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintln(os.Stderr, "Invalid analysis request:")
			for _, e := range verrs {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Field, e.Message)
			}
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "linkgraph: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("linkgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.requestFile, "request", "", "Analysis request file (.json, .yaml)")
	fs.StringVar(&opts.csvFile, "csv", "", "CSV file, header row names the fields")
	fs.BoolVar(&opts.sample, "sample", false, "Analyze the built-in sample data")
	fs.StringVar(&opts.configFile, "config", "", "Configuration file")
	fs.StringVar(&opts.outFile, "out", "", "Write output to this file instead of stdout")
	fs.StringVar(&opts.format, "format", "text", "Output format: text or json")

	fs.StringVar(&opts.layout, "layout", "", "Layout algorithm: spring, circular, kamada_kawai, mds")
	fs.Float64Var(&opts.spacing, "spacing", 0, "Target distance between linked nodes")
	fs.IntVar(&opts.iterations, "iterations", 0, "Layout iterations")
	fs.Int64Var(&opts.seed, "seed", 0, "Spring layout seed")
	fs.Int64Var(&opts.timeoutMS, "timeout-ms", 0, "Layout time limit in milliseconds")
	fs.IntVar(&opts.topK, "top-k", 0, "Number of most central values to report")
	fs.StringVar(&opts.community, "community", "", "Community detection: greedy or louvain")
	fs.BoolVar(&opts.foldCase, "fold-case", false, "Treat values differing only in case as equal")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	sources := 0
	for _, given := range []bool{opts.requestFile != "", opts.csvFile != "", opts.sample} {
		if given {
			sources++
		}
	}
	if sources != 1 {
		fs.Usage()
		return nil, fmt.Errorf("exactly one of -request, -csv or -sample is required")
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unknown output format %q", opts.format)
	}
	return opts, nil
}

// loadRequest reads the request from the selected source and applies flag
// overrides on top of it
func loadRequest(opts *options) (*models.AnalysisRequest, error) {
	var (
		req *models.AnalysisRequest
		err error
	)
	switch {
	case opts.sample:
		req = linkage.SampleRequest()
	case opts.csvFile != "":
		req, err = validation.LoadAndValidateCSV(opts.csvFile)
	default:
		req, err = validation.LoadAndValidateRequest(opts.requestFile)
	}
	if err != nil {
		return nil, err
	}

	vis := &req.Visualization
	if opts.set["layout"] {
		vis.Layout = models.LayoutAlgorithm(opts.layout)
	}
	if opts.set["spacing"] {
		vis.Spacing = &opts.spacing
	}
	if opts.set["iterations"] {
		vis.Iterations = &opts.iterations
	}
	if opts.set["seed"] {
		vis.Seed = &opts.seed
	}
	if opts.set["timeout-ms"] {
		vis.TimeoutMS = opts.timeoutMS
	}
	if opts.set["top-k"] {
		req.TopK = opts.topK
	}
	if opts.set["community"] {
		req.Community = models.CommunityMethod(opts.community)
	}
	if opts.foldCase {
		req.FoldCase = true
	}
	return req, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if opts.configFile != "" {
		if err := cfg.LoadFromFile(opts.configFile); err != nil {
			return err
		}
	}
	logger := cfg.CreateLoggerTo(stderr, "linkgraph")

	req, err := loadRequest(opts)
	if err != nil {
		return err
	}

	if opts.outFile != "" {
		if err := validation.ValidateOutputPath(opts.outFile); err != nil {
			return err
		}
	}

	engine := pipeline.NewEngine(cfg, logger)
	resp, err := engine.Analyze(ctx, req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if opts.format == "json" {
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode json output: %w", err)
		}
	} else if err := result.WriteReport(&buf, resp); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if opts.outFile == "" {
		if _, err := buf.WriteTo(stdout); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := writeFile(opts.outFile, buf.Bytes()); err != nil {
		return err
	}
	logger.Info().Str("path", opts.outFile).Str("format", opts.format).Msg("Analysis written")
	return nil
}

// writeFile creates path only once the output is ready
func writeFile(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
