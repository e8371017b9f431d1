package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/syncedit/internal/config"
	"github.com/dshills/syncedit/internal/engine"
	"github.com/dshills/syncedit/internal/hook"
)

// options collects the flag values shared by all subcommands.
type options struct {
	configPath  string
	pattern     string
	replacement string
	from        string
	startAt     int
	format      string
	output      string
	dryRun      bool
	watch       bool
	regex       bool
	ignoreCase  bool
	wholeWord   bool
}

// operator applies one bulk transformation to an activated session.
type operator func(*engine.Session, *options) error

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:     "syncedit",
		Short:   "Apply an edit to every occurrence of a pattern in a file",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Long: `syncedit finds every occurrence of a pattern in a file and applies
one transformation to all of them at once, the way a synchronized
multi-occurrence editing session would.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (TOML or YAML)")
	pf.StringVarP(&opts.pattern, "pattern", "p", "", "pattern to activate (required)")
	pf.StringVarP(&opts.output, "output", "o", "", "write the result to this file instead of in place")
	pf.BoolVar(&opts.dryRun, "dry-run", false, "print the result to stdout without writing")
	pf.BoolVar(&opts.watch, "watch", false, "re-apply whenever the input file changes (implies --dry-run unless -o is set)")
	pf.BoolVar(&opts.regex, "regex", false, "treat the pattern as a regular expression")
	pf.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	pf.BoolVarP(&opts.wholeWord, "word", "w", false, "match whole words only")

	root.AddCommand(
		newOperatorCmd(opts, "upcase", "Uppercase every occurrence",
			func(s *engine.Session, _ *options) error { return s.UpcaseAll() }),
		newOperatorCmd(opts, "downcase", "Lowercase every occurrence",
			func(s *engine.Session, _ *options) error { return s.DowncaseAll() }),
		newOperatorCmd(opts, "togglecase", "Flip every occurrence between capitalized and lowercase",
			func(s *engine.Session, _ *options) error { return s.ToggleCaseAll() }),
		newOperatorCmd(opts, "delete", "Delete every occurrence",
			func(s *engine.Session, _ *options) error { return s.DeleteAll() }),
		newOperatorCmd(opts, "blank", "Replace every occurrence with spaces",
			func(s *engine.Session, _ *options) error { return s.BlankAll() }),
		newNumberCmd(opts),
		newIncrementCmd(opts),
		newReplaceCmd(opts),
	)
	return root
}

// newOperatorCmd builds a subcommand around a flagless bulk operator.
func newOperatorCmd(opts *options, use, short string, op operator) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0], op)
		},
	}
}

func newNumberCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "number FILE",
		Short: "Insert a running counter before each occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0], func(s *engine.Session, o *options) error {
				return s.NumberAll(o.startAt, o.format)
			})
		},
	}
	cmd.Flags().IntVar(&opts.startAt, "start", 1, "first counter value")
	cmd.Flags().StringVar(&opts.format, "format", "", "printf format for the counter")
	return cmd
}

func newIncrementCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "increment FILE",
		Short: "Replace the placeholder inside each occurrence with a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0], func(s *engine.Session, o *options) error {
				return s.IncrementAll(o.format)
			})
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "printf format for the counter")
	return cmd
}

func newReplaceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace FILE",
		Short: "Replace text inside each occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0], func(s *engine.Session, o *options) error {
				return s.ReplaceAll(o.from, o.replacement)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.replacement, "replacement", "r", "", "replacement text (required)")
	cmd.Flags().StringVar(&opts.from, "from", "", "text to replace inside each occurrence (default: the whole occurrence)")
	_ = cmd.MarkFlagRequired("replacement")
	return cmd
}

// run dispatches between single-shot and watch mode.
func run(opts *options, file string, op operator) error {
	if opts.pattern == "" {
		return fmt.Errorf("a pattern is required (use -p)")
	}
	if opts.watch {
		return runWatch(opts, file, op)
	}

	result, err := transform(opts, file, op)
	if err != nil {
		return err
	}
	return emit(opts, file, result)
}

// transform runs one activation plus operator over the file's content
// and returns the resulting text.
func transform(opts *options, file string, op operator) (string, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}

	s := engine.New(
		engine.WithContent(string(data)),
		engine.WithMatchOptions(engine.MatchOptions{
			UseRegex:      cfg.UseRegex || opts.regex,
			CaseSensitive: cfg.CaseSensitive && !opts.ignoreCase,
			WholeWord:     cfg.WholeWord || opts.wholeWord,
		}),
		engine.WithPlaceholder(cfg.Placeholder),
		engine.WithIndexThreshold(cfg.IndexThreshold),
	)
	defer s.Close()

	var runner *hook.Runner
	if cfg.HookScript != "" {
		runner, err = hook.Load(cfg.HookScript)
		if err != nil {
			return "", err
		}
		defer runner.Close()
		s.OnAbort(func() {
			if err := runner.OnAbort(s.ID()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		})
	}

	n, err := s.Activate(opts.pattern)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("pattern %q matches nothing in %s", opts.pattern, file)
	}
	if runner != nil {
		if err := runner.OnActivate(s.ID(), n); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if err := op(s, opts); err != nil {
		return "", err
	}
	s.FinishCommand()
	return s.Text(), nil
}

// emit writes the result per the output flags: stdout for --dry-run,
// the -o path, or the input file in place.
func emit(opts *options, file, result string) error {
	if opts.dryRun {
		_, err := fmt.Print(result)
		return err
	}
	target := file
	if opts.output != "" {
		target = opts.output
	}
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	return os.WriteFile(target, []byte(result), info.Mode().Perm())
}
