/*
Copyright © 2025 Periferia IT Group
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/periferia-labs/perxia-be/config"
	"github.com/periferia-labs/perxia-be/database"
)

// initIndexCmd represents the init-index command
var initIndexCmd = &cobra.Command{
	Use:   "init-index",
	Short: "Create the document chunk index",
	Long: `Creates the chunk class in the document index if it is missing.
With --recreate the class is dropped first, discarding all indexed chunks.`,
	Run: func(cmd *cobra.Command, args []string) {
		recreate, _ := cmd.Flags().GetBool("recreate")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		chunkIndex, err := database.NewWeaviateChunkStore(cfg.DocumentIndex)
		if err != nil {
			log.Fatalf("Failed to connect to document index: %v", err)
		}

		if recreate {
			if err := chunkIndex.RecreateSchema(context.Background()); err != nil {
				log.Fatalf("Failed to recreate index: %v", err)
			}
			log.Printf("Recreated class %s", cfg.DocumentIndex.Class)
			return
		}

		if err := chunkIndex.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to create index: %v", err)
		}
		log.Printf("Class %s is ready", cfg.DocumentIndex.Class)
	},
}

func init() {
	rootCmd.AddCommand(initIndexCmd)
	initIndexCmd.Flags().BoolP("recreate", "r", false, "Drop and recreate the class")
}
