package main

import "worktime/cmd"

func main() {
	cmd.Execute()
}
