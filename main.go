package main

import "github.com/yoans/micro-tonal-interface/cmd"

func main() {
	cmd.Execute()
}
