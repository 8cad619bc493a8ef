package main

import "github.com/PI-33/text2sql/cmd/text2sql/cli"

func main() {
	cli.Execute()
}
