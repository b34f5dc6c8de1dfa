package main

import "github.com/oshokin/security-zone/cmd/zone-arm/cmd"

func main() {
	cmd.Execute()
}
