package main

import "github.com/Broccolito/TidyFlow/internal/cmd"

func main() {
	cmd.Execute()
}
