// Command filequeue runs a file generator and a file processor over a
// bounded queue for a fixed duration, with an optional status server.
package main

import "log"

func main() {
	if err := run(); err != nil {
		log.Fatalf("filequeue: %v", err)
	}
}
