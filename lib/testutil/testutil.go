package testutil

import (
	"animfilms-backend/lib/telemetry"
	"animfilms-backend/pkg/migrations"
	"database/sql"
	"fmt"
	"testing"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	if params.DbSchema == "" {
		return ServiceResult{}, cleanup
	}

	dbpath := ":memory:"
	if params.DbPath != "" {
		dbpath = params.DbPath
	}
	database, err := migrations.OpenAndMigrateDB(params.DbSchema, dbpath, "")
	if err != nil {
		t.Fatal(err)
	}

	teardown := func() {
		database.Close()
		cleanup()
	}
	return ServiceResult{DB: database}, teardown
}
