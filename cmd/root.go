// Package cmd implements the CLI command structure for planfile.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/document"
	"github.com/planfile/planfile/internal/export"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/plan"
	"github.com/planfile/planfile/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the planfile CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("planfile", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.NewFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	// No subcommand, or a leading flag, means "compile".
	subcommand := "compile"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "compile":
		return compileCommand(cfg, logger, remainingArgs)
	case "check":
		return checkCommand(cfg, logger, remainingArgs)
	case "stats":
		return statsCommand(cfg, remainingArgs)
	case "timeline":
		return timelineCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "init-config":
		return initConfigCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// An existing file path compiles that file.
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.PlanFile = subcommand
			return compileCommand(cfg, logger, remainingArgs)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newCompiler builds the document compiler from the loaded config.
func newCompiler(cfg *config.Config) (*document.Compiler, error) {
	workload, err := cfg.WorkloadConfig()
	if err != nil {
		return nil, err
	}
	return &document.Compiler{
		Units:        cfg.UnitsTable(),
		Workload:     workload,
		Today:        time.Now().UTC(),
		Seed:         cfg.RandomSeed,
		ShowQuarters: cfg.ShowQuarters,
	}, nil
}

func resolvePlanFile(cfg *config.Config, args []string) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return cfg.PlanFile, nil
}

// compileCommand schedules the plan and writes the updated document back.
func compileCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("planfile compile", flag.ContinueOnError)
	toStdout := fs.Bool("stdout", false, "Print the compiled document instead of rewriting the file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	planPath, err := resolvePlanFile(cfg, fs.Args())
	if err != nil {
		return err
	}

	compiler, err := newCompiler(cfg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}

	result, err := compiler.Compile(string(content))
	if err != nil {
		return fmt.Errorf("compiling plan: %w", err)
	}

	for _, group := range result.Warnings.Groups() {
		for _, message := range group.Messages {
			logger.Warn(message, "kind", group.Label)
		}
	}

	if *toStdout {
		fmt.Print(result.Content)
		return nil
	}

	if result.Content == string(content) {
		logger.Debug("plan already up to date", "file", planPath)
		return nil
	}
	if err := os.WriteFile(planPath, []byte(result.Content), 0644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	logger.Info("plan compiled",
		"file", planPath,
		"tasks", len(result.Plan.MandatoryTasks()),
		"warnings", result.Warnings.Len())
	return nil
}

// checkCommand compiles without writing and fails when warnings remain.
func checkCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("planfile check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	planPath, err := resolvePlanFile(cfg, fs.Args())
	if err != nil {
		return err
	}

	compiler, err := newCompiler(cfg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	result, err := compiler.Compile(string(content))
	if err != nil {
		return fmt.Errorf("compiling plan: %w", err)
	}

	if result.Warnings.Empty() {
		logger.Info("plan is clean",
			"file", planPath,
			"sections", len(result.Plan.ScheduledSections()),
			"tasks", len(result.Plan.MandatoryTasks()))
		return nil
	}

	for _, group := range result.Warnings.Groups() {
		for _, message := range group.Messages {
			logger.Warn(message, "kind", group.Label)
		}
	}
	return fmt.Errorf("plan has %d warnings", result.Warnings.Len())
}

// statsCommand prints per-category effort totals and daily capacities.
func statsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planfile stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	planPath, err := resolvePlanFile(cfg, fs.Args())
	if err != nil {
		return err
	}

	compiler, err := newCompiler(cfg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	result, err := compiler.Compile(string(content))
	if err != nil {
		return fmt.Errorf("compiling plan: %w", err)
	}

	p := result.Plan
	fmt.Printf("Plan: %s\n", planPath)
	fmt.Printf("Sections: %d scheduled\n", len(p.ScheduledSections()))
	fmt.Printf("Tasks: %d pending\n\n", len(p.MandatoryTasks()))

	totals := make(map[string]int)
	for _, task := range p.MandatoryTasks() {
		for _, category := range task.CategoryNames() {
			minutes, _ := task.CategoryDuration(category)
			totals[category] += minutes
		}
	}

	categories := result.Stats.Categories
	sort.Strings(categories)
	for _, category := range categories {
		label := category
		if label == "" {
			label = plan.Uncategorized
		}
		fmt.Printf("%-12s effort %-8s capacity %s/day\n",
			label,
			plan.HumanDuration(totals[category], p.Units, 2),
			plan.HumanDuration(result.Stats.Workload(category), p.Units, 2))
	}
	return nil
}

// timelineCommand launches the interactive timeline viewer.
func timelineCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planfile timeline", flag.ContinueOnError)
	weeks := fs.Int("weeks", cfg.TimelineWeeks, "Timeline horizon in weeks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	planPath, err := resolvePlanFile(cfg, fs.Args())
	if err != nil {
		return err
	}

	compiler, err := newCompiler(cfg)
	if err != nil {
		return err
	}
	return ui.RunTimeline(ctx, compiler, planPath, *weeks)
}

// exportCommand writes the computed schedule as JSON.
func exportCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planfile export", flag.ContinueOnError)
	output := fs.String("o", "", "Output file (default stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	planPath, err := resolvePlanFile(cfg, fs.Args())
	if err != nil {
		return err
	}

	compiler, err := newCompiler(cfg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	result, err := compiler.Compile(string(content))
	if err != nil {
		return fmt.Errorf("compiling plan: %w", err)
	}

	data, err := export.Marshal(result.Plan, result.Warnings, compiler.Today, cfg.RandomSeed)
	if err != nil {
		return err
	}

	if *output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

// initConfigCommand writes an example config file into the current directory.
func initConfigCommand(args []string) error {
	fs := flag.NewFlagSet("planfile init-config", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	path := "planfile.toml"
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("planfile version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Planfile - A plain-text project plan compiler")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  planfile [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  compile [file]  Schedule tasks and rewrite the plan (default command)")
	fmt.Fprintln(w, "  check [file]    Compile without writing; fail on warnings")
	fmt.Fprintln(w, "  stats [file]    Show per-category effort and capacity")
	fmt.Fprintln(w, "  timeline [file] Launch the interactive timeline viewer")
	fmt.Fprintln(w, "  export [file]   Write the computed schedule as JSON")
	fmt.Fprintln(w, "  init-config     Write an example planfile.toml")
	fmt.Fprintln(w, "  version         Show version information")
	fmt.Fprintln(w, "  help            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile Options (use with 'compile' command):")
	fmt.Fprintln(w, "  -stdout")
	fmt.Fprintln(w, "        Print the compiled document instead of rewriting the file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeline Options (use with 'timeline' command):")
	fmt.Fprintln(w, "  -weeks int")
	fmt.Fprintln(w, "        Timeline horizon in weeks (default 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options (use with 'export' command):")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file (default stdout)")
}
