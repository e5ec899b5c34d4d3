package main

import "github.com/petropage/ledgerocr/cmd/ledgerocr/cmd"

func main() {
	cmd.Execute()
}
