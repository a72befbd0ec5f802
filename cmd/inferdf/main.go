// Command inferdf is the driver the engine packages are built to be
// consumed from: it reads N-Quads input and rule files, runs the
// builder's fixed point, checks universal rules, writes a paged BRDF
// module, and reports contradictions / missing statements as coloured
// diagnostics.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
