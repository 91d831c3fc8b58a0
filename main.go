/*
Copyright © 2025 Periferia IT Group
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/periferia-labs/perxia-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
}
