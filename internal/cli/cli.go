package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the parsed command line. WorkflowPath selects one-shot mode;
// without it the server runs.
type Options struct {
	ConfigPath string
	Listen     string
	LogFormat  string
	LogLevel   string

	WorkflowPath  string
	PrintSequence bool
	ConvertTarget string
	ConvertMode   string
	Tools         []string
	Instructions  string
}

// Parse processes command-line arguments. It returns the populated Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("alterflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Alterflow - converts Alteryx workflows (.yxmd) into Python or SQL.

Usage:
  alterflow [options]                      start the HTTP server
  alterflow [options] -workflow FILE ...   run one workflow headlessly

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an optional HCL config file.")
	listenFlag := flagSet.String("listen", "", "Listen address for the HTTP server, e.g. ':8080'. Overrides the config file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	workflowFlag := flagSet.String("workflow", "", "Path to a .yxmd file for one-shot mode.")
	printSequenceFlag := flagSet.Bool("print-sequence", false, "Print the workflow's execution order and exit (requires -workflow).")
	convertFlag := flagSet.String("convert", "", "Convert the workflow headlessly. Options: 'python' or 'sql' (requires -workflow).")
	modeFlag := flagSet.String("mode", "direct", "Conversion pipeline. Options: 'direct' or 'advanced'.")
	toolsFlag := flagSet.String("tools", "", "Comma-separated tool ids to restrict the conversion; empty converts every tool.")
	instructionsFlag := flagSet.String("instructions", "", "Extra free-form guidance forwarded into the generation prompts.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	convertTarget := strings.ToLower(*convertFlag)
	if convertTarget != "" && convertTarget != "python" && convertTarget != "sql" {
		return nil, false, &ExitError{Code: 2, Message: "invalid convert target: must be 'python' or 'sql'"}
	}
	convertMode := strings.ToLower(*modeFlag)
	if convertMode != "direct" && convertMode != "advanced" {
		return nil, false, &ExitError{Code: 2, Message: "invalid mode: must be 'direct' or 'advanced'"}
	}
	if *workflowFlag == "" && (*printSequenceFlag || convertTarget != "") {
		return nil, false, &ExitError{Code: 2, Message: "-print-sequence and -convert require -workflow"}
	}
	slog.Debug("CLI parameter validation complete.")

	var tools []string
	for _, id := range strings.Split(*toolsFlag, ",") {
		if id = strings.TrimSpace(id); id != "" {
			tools = append(tools, id)
		}
	}

	opts := &Options{
		ConfigPath:    *configFlag,
		Listen:        *listenFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		WorkflowPath:  *workflowFlag,
		PrintSequence: *printSequenceFlag,
		ConvertTarget: convertTarget,
		ConvertMode:   convertMode,
		Tools:         tools,
		Instructions:  *instructionsFlag,
	}
	slog.Debug("CLI parser finished successfully.")
	return opts, false, nil
}
