package main

import "github.com/nikogura/resume-matcher/cmd"

func main() {
	cmd.Execute()
}
