package main

import "github.com/mlavigne/client-management/cmd"

func main() {
	cmd.Execute()
}
