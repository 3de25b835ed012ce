package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/DeafChair/XOSS-Database-Browser/internal/catalog"
)

func runDatabases(args []string) int {
	fs := flag.NewFlagSet("databases", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: xossdb databases

Print the built-in database catalog.`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tURL")
	for _, db := range catalog.Databases() {
		fmt.Fprintf(tw, "%s\t%s\n", db.Name, db.URL)
	}
	tw.Flush()

	return ExitSuccess
}
