package main

import "github.com/specforge-dev/specforge/cmd"

func main() {
	cmd.Execute()
}
