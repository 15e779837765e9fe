package main

import "github.com/PabloGalante/productibot/internal/cli"

func main() {
	cli.Execute()
}
