package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/calc/internal/batch"
	"github.com/karupanerura/calc/internal/defaults"
	"github.com/karupanerura/calc/internal/expression"
	"github.com/karupanerura/calc/internal/server"
	"github.com/karupanerura/calc/internal/types"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
)

type Option struct {
	File      string   `short:"f" long:"file" description:"[OPTIONAL] Batch file (YAML or JSON)" required:"false"`
	Constants string   `short:"c" long:"constants" description:"[OPTIONAL] Constants preset (math)" required:"false"`
	Vars      []string `long:"var" description:"[OPTIONAL] Variable binding as name=value (repeatable)" required:"false"`
	MaxLength int      `long:"max-length" description:"[OPTIONAL] Reject expressions longer than this many characters" required:"false"`
	Raw       bool     `long:"raw" description:"[OPTIONAL] Print bare results instead of JSON" required:"false"`
	Echo      bool     `long:"echo" description:"[OPTIONAL] Print the parsed tree before each bare result" required:"false"`
	Listen    string   `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the evaluation API" required:"false"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Usage = "[OPTIONS] EXPRESSION..."
	exprs, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(stdout)
			return 1
		}
	}

	// server mode
	if opt.Listen != "" {
		if len(exprs) != 0 {
			parser.WriteHelp(stdout)
			return 1
		}

		cfg := server.Config{MaxLength: opt.MaxLength}
		if opt.File != "" {
			batchOpts, err := batchOptions(&opt)
			if err != nil {
				dumpError(stderr, err)
				return 1
			}
			cfg.Loader = func() (*batch.Batch, error) {
				return batch.LoadFile(opt.File, batchOpts...)
			}
		} else if opt.Constants != "" || len(opt.Vars) != 0 {
			// constants and bindings only apply to a batch file here
			parser.WriteHelp(stdout)
			return 1
		}
		if err = serve(opt.Listen, cfg); err != nil {
			log.Printf("failed to serve: %v", err)
			return 1
		}
		return 0
	}

	var b *batch.Batch
	switch {
	case opt.File != "" && len(exprs) == 0:
		batchOpts, err := batchOptions(&opt)
		if err != nil {
			dumpError(stderr, err)
			return 1
		}
		b, err = batch.LoadFile(opt.File, batchOpts...)
		if err != nil {
			dumpError(stderr, err)
			return 1
		}
	case opt.File == "" && len(exprs) != 0:
		b, err = compileArgs(&opt, exprs)
		if err != nil {
			dumpError(stderr, err)
			return 1
		}
	default:
		parser.WriteHelp(stdout)
		return 1
	}

	results, runErr := b.Run(context.Background())
	if runErr != nil {
		log.Printf("failed to evaluate: %v", runErr)
	}
	failed := lo.Filter(results, func(r batch.Result, _ int) bool {
		return r.Err != nil
	})

	if opt.Raw {
		if err = dumpRaw(stdout, stderr, results, opt.Echo); err != nil {
			log.Printf("failed to dump results: %v", err)
			return 1
		}
	} else {
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		if err = dumpJSON(stdout, v); err != nil {
			log.Printf("failed to dump results as JSON: %v", err)
			return 1
		}
	}

	if runErr != nil || len(failed) != 0 {
		return 1
	}
	return 0
}

func compileArgs(opt *Option, exprs []string) (*batch.Batch, error) {
	preset, err := defaults.LookupPreset(opt.Constants)
	if err != nil {
		return nil, err
	}
	bindings, err := parseVars(opt.Vars)
	if err != nil {
		return nil, err
	}
	valuation := preset.ExtendMap(bindings)

	b := &batch.Batch{
		Entries: make([]*batch.Entry, len(exprs)),
	}
	for i, src := range exprs {
		if err := expression.CheckLength(src, opt.MaxLength); err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}

		expr, err := expression.ParseExpr(src)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		b.Entries[i] = &batch.Entry{
			Name:      fmt.Sprintf("args[%d]", i),
			Expr:      expr,
			Valuation: valuation,
		}
	}
	return b, nil
}

// batchOptions layers the command line constants, bindings and length limit
// over a batch file.
func batchOptions(opt *Option) ([]batch.Option, error) {
	bindings, err := parseVars(opt.Vars)
	if err != nil {
		return nil, err
	}
	return []batch.Option{
		batch.WithConstants(opt.Constants),
		batch.WithBindings(bindings),
		batch.WithMaxLength(opt.MaxLength),
	}, nil
}

func parseVars(vars []string) (map[string]float64, error) {
	bindings := make(map[string]float64, len(vars))
	for _, s := range vars {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}

		name := strings.TrimSpace(d[0])
		if !expression.IsIdentifier(name) {
			return nil, fmt.Errorf("--var %s: invalid variable name: %q", s, name)
		}
		v, err := types.ToFloat64(strings.TrimSpace(d[1]))
		if err != nil {
			return nil, fmt.Errorf("--var %s: %w", s, err)
		}
		bindings[name] = v
	}
	return bindings, nil
}

func serve(listen string, cfg server.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := server.NewHTTPHandler(ctx, cfg)
	if err != nil {
		return err
	}

	srv := http.Server{
		Handler: handler,
		Addr:    listen,
	}

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func dumpRaw(stdout, stderr io.Writer, results []batch.Result, echo bool) error {
	for _, r := range results {
		if echo {
			if _, err := fmt.Fprintf(stdout, "%s : ", r.Tree); err != nil {
				return err
			}
		}
		if r.Err != nil {
			if _, err := fmt.Fprintln(stdout, "error"); err != nil {
				return err
			}
			dumpError(stderr, r.Err)
			continue
		}
		if _, err := fmt.Fprintf(stdout, "%g\n", r.Value); err != nil {
			return err
		}
	}
	return nil
}

func dumpError(w io.Writer, err error) {
	if _, werr := fmt.Fprintln(w, err.Error()); werr != nil {
		log.Printf("failed to dump error: %v", werr)
	}
	if werr := dumpJSON(w, types.ExceptionOf(err)); werr != nil {
		log.Printf("failed to dump error as JSON: %v", werr)
	}
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
