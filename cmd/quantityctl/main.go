// Command quantityctl manages a SQLite store of unit-aware bale weights.
package main

import "github.com/banshee-data/quantityfield/internal/cli"

func main() {
	cli.Execute()
}
