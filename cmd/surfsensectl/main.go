// ABOUTME: Entry point for the surfsensectl CLI
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString(renderError(err))
		os.Exit(1)
	}
}
