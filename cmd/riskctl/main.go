package main

import "architecture-risk-engine/cmd/riskctl/commands"

func main() {
	commands.Execute()
}
