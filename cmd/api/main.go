package main

import "github.com/BradenHooton/teamup-users/cmd/api/cmd"

func main() {
	cmd.Execute()
}
