package main

import "report-service/cmd"

func main() {
	cmd.Execute()
}
