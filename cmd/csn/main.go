package main

import "github.com/OpenTraceLab/csn/cmd/csn/cmd"

func main() {
	cmd.Execute()
}
