package main

import (
	devenv "animfilms-backend/dev/env"
	"animfilms-backend/pkg/migrations"
	filmsdb "animfilms-backend/services/films/db"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

func createDb(filename, schema string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := migrations.OpenAndMigrateDB(schema, path, "")
	if err != nil {
		return err
	}
	return db.Close()
}

func CreateEmptyServiceDBs() error {
	return createDb("animfilms.db", filmsdb.Schema)
}

const configPath = "cmd/animfilms/config.json5"

func CreateConfig() error {
	_, err := os.Stat(configPath)
	if err == nil {
		fmt.Println("config already created at", configPath)
		return nil
	}

	example, err := os.ReadFile("cmd/animfilms/config.example.json5")
	if err != nil {
		return err
	}
	fmt.Println("creating config at", configPath)
	return os.WriteFile(configPath, example, 0600)
}

func PrintConfigLocations() {
	slog.Info("the smtp notifier test needs docker, it is skipped otherwise. set email.* in cmd/animfilms/config.local.json5 to receive refresh failures locally.")
}
