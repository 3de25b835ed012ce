package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
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
	case "browse":
		return runBrowse(cmdArgs)
	case "get":
		return runGet(cmdArgs)
	case "history":
		return runHistory(cmdArgs)
	case "databases":
		return runDatabases(cmdArgs)
	case "cache":
		return runCache(cmdArgs)
	case "version":
		fmt.Println("xossdb " + version)
		return ExitSuccess
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
	fmt.Fprintln(os.Stderr, `Usage: xossdb <command> [options]

Commands:
  browse     Print the listing of a database or autoindex URL
  get        Download files and directories with resume
  history    Show or edit the download history
  databases  Print the built-in database catalog
  cache      Sweep or clear the directory cache
  version    Print the version

Run 'xossdb <command> -h' for command-specific help.`)
}
