// Command envload loads .env files in order and either prints the resulting
// entries or runs a command with them in its environment.
//
//	envload -f .env -f .env.local -- ./server --port 8080
//	envload -f 'config/**/*.env' --glob --where 'key startsWith "APP_"' -o json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vivaneiona/envload"
)

type options struct {
	files    []string
	user     bool
	strict   bool
	glob     bool
	where    string
	mask     bool
	output   string
	override bool
	verbose  bool
}

func main() {
	code, err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "envload: %v\n", err)
	}
	os.Exit(code)
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("envload", pflag.ContinueOnError)
	fs.StringArrayVarP(&opts.files, "file", "f", []string{".env"}, "env file to load, repeatable, later files override earlier ones")
	fs.BoolVar(&opts.user, "user", false, "also load the per-user file "+envload.UserConfigPath())
	fs.BoolVar(&opts.strict, "strict", false, "fail when a file cannot be read")
	fs.BoolVar(&opts.glob, "glob", false, "expand glob patterns in file paths")
	fs.StringVar(&opts.where, "where", "", "expr filter over key and value, e.g. 'key startsWith \"APP_\"'")
	fs.BoolVar(&opts.mask, "mask", false, "mask secret values when printing")
	fs.StringVarP(&opts.output, "output", "o", "env", "print format: env, json, yaml or toml")
	fs.BoolVar(&opts.override, "override", false, "let files override variables already set in the environment")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log each source and entry to stderr")
	fs.SetInterspersed(false)
	return fs
}

// run returns the process exit code. A non-nil error is reported by main.
func run(args []string, stdout, stderr io.Writer) (int, error) {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, nil
		}
		return 2, err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:   level,
		NoColor: !isTerminal(stderr),
	}))

	files := opts.files
	if opts.user {
		files = append(files, envload.UserConfigPath())
	}

	loader := envload.NewLoader(
		envload.WithStrict(opts.strict),
		envload.WithGlob(opts.glob),
		envload.WithLogger(logger),
	)
	entries, err := loader.Load(files...)
	if err != nil {
		return 1, err
	}
	if opts.where != "" {
		if entries, err = envload.Where(entries, opts.where); err != nil {
			return 2, err
		}
	}

	command := fs.Args()
	if len(command) == 0 {
		if opts.mask {
			if entries, err = envload.Redact(entries, envload.DefaultSecretPatterns); err != nil {
				return 1, err
			}
		}
		if err := writeEntries(stdout, opts.output, entries); err != nil {
			return 1, err
		}
		return 0, nil
	}

	if err := envload.Apply(entries, &envload.EnvSink{Override: opts.override}); err != nil {
		return 1, err
	}
	logger.Debug("running command", "name", command[0], "entries", len(entries))
	return execCommand(command, stdout, stderr)
}

func execCommand(command []string, stdout, stderr io.Writer) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 127, fmt.Errorf("run %s: %w", command[0], err)
	}
	return 0, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
