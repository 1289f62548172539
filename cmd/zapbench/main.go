// Command zapbench runs the bundled demonstration suite.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"zap/pkg/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Application Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	zap.Main(register)
}
