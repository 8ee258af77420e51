// swiftmock generates compilable mock implementations for annotated
// protocol and class declarations, merging freshly parsed source with
// previously generated mocks from upstream modules.
package main

import (
	"os"

	// Register the built-in parser backend.
	_ "swiftmock/internal/parser/scan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
