package main

import "github.com/oshokin/gen-update-config/cmd/gen-update-config/cmd"

func main() {
	cmd.Execute()
}
