package main

import "github.com/appealsdesk/appeals-registry/cmd"

func main() {
	cmd.Execute()
}
