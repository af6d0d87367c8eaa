package main

import (
	"context"
	"flag"
	"log"

	"github.com/tensor-horizon/evidence-exchange/pkg/config"
	"github.com/tensor-horizon/evidence-exchange/pkg/exchangestore"
	"github.com/tensor-horizon/evidence-exchange/pkg/pgutil"
	mghelper "github.com/tensor-horizon/evidence-exchange/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if !cfg.Database.Enabled() {
		log.Fatal("database.host is not configured")
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	if len(flag.Args()) != 1 {
		mghelper.Exitf("expected exactly one command")
	}

	ctx := context.Background()
	models := []any{(*exchangestore.ExchangeDao)(nil)}

	switch cmd := flag.Arg(0); cmd {
	case "init":
		log.Printf("Creating exchange store schema (%s)...\n", cfg.Database.Database)
		err = mghelper.CreateSchema(ctx, db, models...)
	case "drop":
		log.Printf("Dropping exchange store tables (%s)...\n", cfg.Database.Database)
		err = mghelper.DropTables(ctx, db, models...)
	default:
		mghelper.Exitf("unknown command %q", cmd)
	}
	if err != nil {
		mghelper.Exitf(err.Error())
	}
}
