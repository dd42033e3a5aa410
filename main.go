// Package main serves as the entry point for the codemeta application.
// It extracts attribute and documentation metadata from source trees,
// stores the results in PostgreSQL, and publishes file-indexed events
// to NATS JetStream.
package main

import "codemeta/cmd"

func main() {
	cmd.Execute()
}
