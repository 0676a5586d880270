package main

import "github.com/KaramelBytes/lensdata-cli/cmd"

func main() {
	cmd.Execute()
}
