package main

import "github.com/dhruv-naik/nbweave/cmd"

func main() {
	cmd.Execute()
}
