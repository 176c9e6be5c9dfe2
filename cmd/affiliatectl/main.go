package main

import "affiliate-market/cmd/affiliatectl/commands"

func main() {
	commands.Execute()
}
