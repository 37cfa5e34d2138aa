// Package main is the entry point for the GEO Optimizer backend.
//
// Usage:
//
//	geo-optimizer serve
//	geo-optimizer analyze <url> [--format markdown|json|yaml] [--pdf report.pdf]
package main

func main() {
	Execute()
}
