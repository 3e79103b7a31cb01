// Command larder inspects and edits a Larder key-value store.
package main

import "github.com/mesh-intelligence/larder/internal/cli"

func main() {
	cli.Execute()
}
