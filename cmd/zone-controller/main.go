package main

import "github.com/oshokin/security-zone/cmd/zone-controller/cmd"

func main() {
	cmd.Execute()
}
