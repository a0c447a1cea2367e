package main

import "github.com/slsoft/permission-portal/cmd"

func main() {
	cmd.Execute()
}
