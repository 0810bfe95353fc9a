package main

import "animfilms-backend/cmd/animfilms/cmd"

func main() {
	cmd.Execute()
}
