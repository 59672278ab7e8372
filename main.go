package main

import "github.com/jjenkins/clinicmap/cmd"

func main() {
	cmd.Execute()
}
