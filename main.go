package main

import "github.com/tomehq/tome/cmd"

func main() {
	cmd.Execute()
}
