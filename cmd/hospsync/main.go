package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitCatalogError = 3
	ExitStorageError = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "sync":
		return runSync(cmdArgs)
	case "catalog":
		return runCatalog(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: hospsync <command> [options]

Commands:
  sync     Download hospital datasets, normalize headers, skip unchanged files
  catalog  List the datasets the current filter would sync (no downloads)

Run 'hospsync <command> -h' for command-specific help.`)
}
