// Command main runs the database seeder for Conduit.
package main

import (
	"log"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("seed failed: %v", err)
		os.Exit(1)
	}
}
