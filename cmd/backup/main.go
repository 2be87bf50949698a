package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"maitje/internal/config"
	"maitje/internal/database"
	"maitje/internal/service"
)

func usage() {
	fmt.Fprintf(os.Stderr, `maitje backup: copy all mAItje data to or from a JSON file

  backup export [-output file]
  backup import -input file [-clear] [-yes]

Tables, in import order:
  %s

The database comes from the server's settings (DB_TYPE, DB_PATH, DATABASE_URL).
`, strings.Join(service.BackupTables(), ", "))
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// openBackupService connects to the configured database and brings the
// schema up to date
func openBackupService() (*service.BackupService, func(), error) {
	db, err := database.InitializeWithConfig(config.Load())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return service.NewBackupService(db), func() { db.Close() }, nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "file to write (default maitje_backup_<timestamp>.json)")
	fs.Parse(args)

	path := *output
	if path == "" {
		path = "maitje_backup_" + time.Now().Format("20060102_150405") + ".json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	backups, closeDB, err := openBackupService()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := backups.Export(path); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		log.Printf("Wrote %s (%d KB)", path, info.Size()/1024)
	}
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	input := fs.String("input", "", "backup file to read")
	clearFirst := fs.Bool("clear", false, "delete all existing rows before importing")
	yes := fs.Bool("yes", false, "do not ask before clearing")
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		return fmt.Errorf("-input is required")
	}
	if _, err := os.Stat(*input); err != nil {
		return fmt.Errorf("cannot read backup: %w", err)
	}
	if *clearFirst && !*yes && !confirm("This deletes every parent, child and prompt in the database. Continue?") {
		log.Print("Nothing imported")
		return nil
	}

	backups, closeDB, err := openBackupService()
	if err != nil {
		return err
	}
	defer closeDB()

	if *clearFirst {
		if err := backups.Clear(); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}
	if err := backups.Import(*input); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Printf("Imported %s", *input)
	return nil
}

func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
