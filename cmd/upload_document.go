/*
Copyright © 2025 Periferia IT Group
*/
package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/periferia-labs/perxia-be/config"
	"github.com/periferia-labs/perxia-be/database"
	"github.com/periferia-labs/perxia-be/repository"
	"github.com/periferia-labs/perxia-be/service"
	"github.com/periferia-labs/perxia-be/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document [files...]",
	Short: "Ingest local files into the document index",
	Long: `Runs the full ingestion pipeline for each file argument: archive,
extract, chunk, embed and index, exactly as the upload endpoint does.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tags, _ := cmd.Flags().GetStringArray("tags")
		uploadedBy, _ := cmd.Flags().GetString("uploaded-by")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		chunkIndex, err := database.NewWeaviateChunkStore(cfg.DocumentIndex)
		if err != nil {
			log.Fatalf("Failed to connect to document index: %v", err)
		}
		if err := chunkIndex.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure document index schema: %v", err)
		}

		mongoDb, err := database.NewMongoDatabase(context.Background(), cfg.MongoConfig)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))

		storage, err := service.NewStorageService(cfg.ArchiveDir)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}

		chunker := service.NewChunkerService(types.ChunkOptions{
			MaxChunkSize: cfg.ChunkingConfig.MaxChunkSize,
			MinChunkSize: cfg.ChunkingConfig.MinChunkSize,
			Overlap:      cfg.ChunkingConfig.Overlap,
		})
		embedder := service.NewEmbeddingService(
			cfg.OpenAIConfig.BaseURL,
			cfg.OpenAIConfig.APIKey,
			cfg.OpenAIConfig.EmbeddingModel,
			cfg.OpenAIConfig.EmbeddingDimension,
		)
		extractor := service.NewLocalExtractor("")
		fileService := service.NewFileService(storage, extractor, chunker, embedder, chunkIndex, documentRepo)

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", path, err)
			}

			result, err := fileService.UploadDocument(context.Background(), types.UploadRequest{
				Filename:   filepath.Base(path),
				UploadedBy: uploadedBy,
				Tags:       tags,
			}, data)
			if err != nil {
				log.Fatalf("Failed to upload %s: %v", path, err)
			}
			log.Printf("Uploaded %s: document %s, %d/%d chunks indexed in %.1fs",
				result.Filename, result.DocumentID, result.ChunksIndexed, result.Chunks, result.Seconds)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)
	uploadDocumentCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the documents")
	uploadDocumentCmd.Flags().String("uploaded-by", "cli", "Uploader recorded in document metadata")
}
