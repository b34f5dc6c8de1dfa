package main

import "github.com/oshokin/security-zone/cmd/zone-disarm/cmd"

func main() {
	cmd.Execute()
}
