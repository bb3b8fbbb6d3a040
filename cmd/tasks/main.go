package main

import "taskDesk/internal/cli"

func main() {
	cli.Execute()
}
