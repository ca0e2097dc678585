package main

import "kgen/cmd/cli/app/cmd"

func main() {
	cmd.Execute()
}
