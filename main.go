package main

import "cmdb-sync/cmd"

func main() {
	cmd.Execute()
}
