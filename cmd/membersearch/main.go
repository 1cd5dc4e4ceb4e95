// Command membersearch serves and runs dynamic member searches.
//
// Usage:
//
//	membersearch serve              start the HTTP API
//	membersearch migrate up|down|version
//	membersearch search --teamName teamA --ageGoe 18 --sort age,desc
//
// All commands read their configuration from MEMBERSEARCH_* environment variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
