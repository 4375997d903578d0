package main

import "github.com/javi11/trendarr/cmd/trendarr/cmd"

func main() {
	cmd.Execute()
}
