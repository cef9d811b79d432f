package main

import "github.com/audiolibrelab/shaq/cmd"

func main() {
	cmd.Execute()
}
