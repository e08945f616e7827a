package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"aluquote/collections"
	"aluquote/config"
	"aluquote/handlers"
	"aluquote/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := pocketbase.New()

	fonts := cfg.FontLoader()
	env := &handlers.Env{
		TaxPercent:   cfg.TaxPercent,
		CompanyLines: cfg.CompanyLines,
		Fonts:        fonts,
		Exporter:     services.NewExporter(cfg.ExportConfig(fonts)),
	}

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateFreezeProfileNames(app); err != nil {
			log.Printf("Warning: profile name migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		se.Router.BindFunc(handlers.NavMiddleware(app, env))

		// ── Quote editor (working draft) ─────────────────────────
		se.Router.GET("/", handlers.HandleEditor(app, env))
		se.Router.POST("/draft", handlers.HandleDraftUpdate(app, env))
		se.Router.POST("/draft/preview", handlers.HandleDraftPreview(app, env))
		se.Router.POST("/draft/items", handlers.HandleDraftAddItem(app, env))
		se.Router.DELETE("/draft/items/{index}", handlers.HandleDraftRemoveItem(app, env))
		se.Router.POST("/draft/reset", handlers.HandleDraftReset(app, env))
		se.Router.GET("/draft/pdf", handlers.HandleDraftExportPDF(app, env))

		// ── Saved quotes ─────────────────────────────────────────
		se.Router.POST("/quotes", handlers.HandleQuoteSave(app, env))
		se.Router.GET("/quotes", handlers.HandleQuoteList(app))
		se.Router.GET("/quotes/{id}/pdf", handlers.HandleQuoteExportPDF(app, env))
		se.Router.POST("/quotes/{id}/edit", handlers.HandleQuoteEdit(app))
		se.Router.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))

		// ── Customers ────────────────────────────────────────────
		se.Router.GET("/customers", handlers.HandleCustomerList(app))
		se.Router.GET("/customers/{id}/excel", handlers.HandleCustomerExcel(app))
		se.Router.GET("/customers/{id}/statement", handlers.HandleCustomerStatement(app, env))
		se.Router.DELETE("/customers/{id}", handlers.HandleCustomerDelete(app))

		// ── Profile catalog ──────────────────────────────────────
		se.Router.GET("/profiles", handlers.HandleProfileList(app))
		se.Router.POST("/profiles", handlers.HandleProfileSave(app))
		se.Router.GET("/profiles/catalog", handlers.HandleProfileCatalogExport(app))
		se.Router.POST("/profiles/import", handlers.HandleProfileCatalogImport(app))
		se.Router.POST("/profiles/{id}", handlers.HandleProfileSave(app))
		se.Router.DELETE("/profiles/{id}", handlers.HandleProfileDelete(app))

		return se.Next()
	})

	app.RootCmd.AddCommand(exportQuoteCmd(app, env))
	app.RootCmd.AddCommand(importLegacyCmd(app))

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func exportQuoteCmd(app *pocketbase.PocketBase, env *handlers.Env) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export-quote <quote-id>",
		Short: "Render a saved quote to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			payload, err := services.LoadQuotePayload(app, args[0])
			if err != nil {
				return err
			}
			result, err := env.Exporter.ExportQuote(context.Background(), payload)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, result.Filename)
			if err := os.WriteFile(path, result.PDF, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the PDF into")
	return cmd
}

func importLegacyCmd(app *pocketbase.PocketBase) *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy <file.json>",
		Short: "Import profiles, customers and quotes from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			collections.Setup(app)
			report, err := services.ImportLegacy(app, f)
			if err != nil {
				return err
			}
			fmt.Printf("profiles: %d, customers: %d, quotes: %d\n", report.Profiles, report.Customers, report.Quotes)
			for _, s := range report.Skipped {
				fmt.Println("skipped:", s)
			}
			return nil
		},
	}
}
