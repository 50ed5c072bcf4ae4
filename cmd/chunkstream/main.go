/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/tushartg/chunkstream/cmd/chunkstream/cmd"
)

func main() {
	cmd.Execute()
}
