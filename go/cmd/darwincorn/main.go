package main

import "github.com/lunixbochs/darwincorn/go/cmd"

func main() { cmd.Main() }
