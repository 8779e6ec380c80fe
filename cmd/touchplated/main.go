// Package main starts the touchplated server.
package main

import "flag"

// main is the entrypoint for the touchplated server.
func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logFatal(err)
	}
}
