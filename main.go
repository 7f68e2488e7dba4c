package main

import "github.com/vigia-scan/vigia/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
