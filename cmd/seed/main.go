// Command seed imports catalog items for one account from an .xlsx sheet.
//
//	seed -template catalog.xlsx             write an empty import sheet
//	seed [-y] <owner-email> <catalog.xlsx>  import every row, all or nothing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ajay-nishad/GST-Invoices-sub001/config"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/db"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
)

func main() {
	template := flag.String("template", "", "write an empty import sheet to this path and exit")
	yes := flag.Bool("y", false, "skip the confirmation prompt")
	flag.Parse()

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if *template != "" {
		if err := writeTemplate(*template); err != nil {
			log.Fatal("Failed to write template: ", err)
		}
		fmt.Printf("Template written to %s\n", *template)
		return
	}

	if flag.NArg() < 2 {
		log.Fatal("Usage: seed [-y] <owner-email> <catalog.xlsx>")
	}
	email := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	filePath := flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close(database)

	ctx := context.Background()
	owner, err := repository.NewUserRepository(database).FindByEmail(ctx, email)
	if err != nil {
		log.Fatalf("No account for %s: %v", email, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX: ", err)
	}
	defer file.Close()

	if !*yes {
		fmt.Printf("Import %s into the catalog of %s? (yes/no): ", filePath, owner.Email)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	items := service.NewItemService(repository.NewItemRepository(database))
	exports := service.NewExportService(nil, items, nil)

	created, err := exports.ImportCatalog(ctx, owner.ID, file)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && len(appErr.Fields) > 0 {
			for field, msg := range appErr.Fields {
				fmt.Printf("  %s: %s\n", field, msg)
			}
		}
		log.Fatal("Import failed, nothing was saved: ", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total items imported: %d\n", created)
}

func writeTemplate(path string) error {
	doc, err := service.NewExportService(nil, nil, nil).CatalogTemplate()
	if err != nil {
		return err
	}
	return os.WriteFile(path, doc.Data, 0o644)
}
