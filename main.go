package main

import "github.com/Beamwelly/CRM-Application-sub001/cmd"

func main() {
	cmd.Execute()
}
