// Package main is the entry point for javasegment, which splits Java source
// files into per-method segments and collects per-method reports.
package main

import "javasegment/cmd"

func main() {
	cmd.Execute()
}
