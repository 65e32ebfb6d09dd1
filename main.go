package main

import "github.com/Digital-Shane/library-tidy/internal/cmd"

func main() {
	cmd.Execute()
}
