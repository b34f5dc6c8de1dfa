package main

import "github.com/oshokin/security-zone/cmd/zone-status/cmd"

func main() {
	cmd.Execute()
}
