// Command origami serves a directory as an origami service: static files
// from public/, views, diagnostics and an optional Fastly purge endpoint.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
