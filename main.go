package main

import "github.com/mockhub/mockhub-console/cmd"

func main() {
	cmd.Execute()
}
