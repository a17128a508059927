package main

import "github.com/Aerilym/libsession-util/cli/cmd"

func main() {
	cmd.Execute()
}
