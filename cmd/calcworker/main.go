// Command calcworker runs the cost engine as an isolated process. It reads
// line-delimited requests on stdin and writes one response line per request
// on stdout until stdin is closed.
package main

import (
	"log"
	"os"

	"github.com/Simplici0/seacost/internal/worker"
)

func main() {
	log.SetPrefix("calcworker: ")
	log.SetOutput(os.Stderr)

	if err := worker.Serve(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
