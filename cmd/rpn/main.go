// Command rpn is an RPN calculator. It reads commands from standard
// input and/or files, or interactively with a read-eval-print loop,
// and (optionally) writes the final stack to standard output.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nickandperla.net/rpn/pkg/rpn"
)

const version = "2.0.0"

func main() {
	var (
		prompt       = flag.String("prompt", "--> ", "The prompt to print at the start of each line when interactive")
		separator    = flag.String("separator", "", "The string to split input lines into separate commands with (default whitespace)")
		debug        = flag.Bool("debug", false, "Print verbose information about how commands are run")
		autoPrint    = flag.Bool("print", false, "Print the result of each command")
		noSplit      = flag.Bool("noSplit", false, "Do not split input lines into separate commands")
		noFinalPrint = flag.Bool("noFinalPrint", false, "Do not print the stack after processing all commands from standard input")
		readStdin    = flag.Bool("stdin", false, "Also read commands from standard input after executing the command line arguments")
		startupFile  = flag.String("startupFile", "", "File of commands to run at startup, usually used to define custom functions and variables")
		dbPath       = flag.String("db", defaultDBPath(), "SQLite database path for history and sessions (empty disables persistence)")
		showVersion  = flag.Bool("version", false, "Print the version number and exit")
	)

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	opts := []rpn.Option{
		rpn.WithAutoPrint(*autoPrint),
		rpn.WithSplitLines(!*noSplit),
		rpn.WithSeparator(*separator),
		rpn.WithDebug(*debug),
	}
	if *dbPath != "" {
		opts = append(opts, rpn.WithSQLiteStore(*dbPath))
	}

	runtime := rpn.New(opts...)
	defer runtime.Close()

	if *startupFile != "" {
		if err := runtime.ExecuteFile(*startupFile); err != nil {
			fmt.Fprintf(os.Stderr, "Startup file %s not found\n", *startupFile)
		}
	}

	files := flag.Args()

	if len(files) > 0 {
		if allFilesExist(files) {
			// All arguments are existing files (or '-', for stdin).
			for _, name := range files {
				if name == "-" {
					runREPL(runtime, *prompt)
				} else {
					f, err := os.Open(name)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", name, err)
						os.Exit(1)
					}
					err = runtime.Batch(f, false)
					f.Close()
					if err != nil {
						fmt.Fprintf(os.Stderr, "Error: %v\n", err)
						os.Exit(1)
					}
				}
			}
		} else {
			// Execute the command line itself as a set of commands.
			err := runtime.Batch(strings.NewReader(strings.Join(files, " ")), !*noFinalPrint)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if *readStdin {
				runREPL(runtime, *prompt)
			}
		}
		return
	}

	if isTerminal() {
		runREPL(runtime, *prompt)
		return
	}

	if err := runtime.Batch(os.Stdin, !*noFinalPrint); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func allFilesExist(names []string) bool {
	for _, name := range names {
		if name == "-" {
			continue
		}
		if _, err := os.Stat(name); err != nil {
			return false
		}
	}
	return true
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rpn_history.db")
}
