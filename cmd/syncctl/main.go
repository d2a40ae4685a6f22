package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"whatsapp-admin/internal/config"
	"whatsapp-admin/internal/database"
	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/sync"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: syncctl all | account <local-id> | phone <local-id>")
	os.Exit(2)
}

func main() {
	logger, _ := zap.NewDevelopmentConfig().Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.LoadConfig()
	db, err := database.Open(cfg)
	if err != nil {
		zap.S().Fatalf("database init failed: %v", err)
	}

	service := sync.NewService(db, meta.NewClient(cfg))
	ctx := context.Background()

	var result sync.Result
	switch os.Args[1] {
	case "all":
		result = service.SyncAll(ctx)
	case "account":
		result = service.SyncAccount(ctx, parseID())
	case "phone":
		result = service.SyncPhoneNumber(ctx, parseID())
	default:
		usage()
	}

	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}

func parseID() uint {
	if len(os.Args) < 3 {
		usage()
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid id %q\n", os.Args[2])
		os.Exit(2)
	}
	return uint(id)
}
