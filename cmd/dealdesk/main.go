// Command dealdesk evaluates startup pitch documents against cohort
// benchmarks and produces a structured investment report.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
