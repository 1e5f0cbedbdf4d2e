// Command useradm provisions user accounts. There is no registration
// endpoint; accounts are created, rotated and removed with this tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/scoutshq/outpost/internal/auth"
	"github.com/scoutshq/outpost/internal/config"
	"github.com/scoutshq/outpost/internal/database"
	"github.com/scoutshq/outpost/internal/model"
)

func main() {
	var (
		username = flag.String("username", "", "username to operate on")
		password = flag.String("password", "", "password to set (create or rotate)")
		remove   = flag.Bool("delete", false, "delete the user instead")
	)
	flag.Parse()

	if *username == "" || (*password == "" && !*remove) {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		fatal("connect to MongoDB: %v", err)
	}
	defer db.Disconnect(context.Background())

	if err := database.CreateIndexes(ctx, db); err != nil {
		fatal("create indexes: %v", err)
	}

	repo := database.NewUserRepository(db)

	if *remove {
		if err := repo.Delete(ctx, *username); err != nil {
			fatal("delete user: %v", err)
		}
		fmt.Printf("deleted user %q\n", *username)
		return
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fatal("hash password: %v", err)
	}

	// Rotate the password when the user already exists, create otherwise.
	if err := repo.UpdatePassword(ctx, *username, hash); err == nil {
		fmt.Printf("updated password for user %q\n", *username)
		return
	}

	if err := repo.Create(ctx, &model.User{Username: *username, Password: hash}); err != nil {
		fatal("create user: %v", err)
	}
	fmt.Printf("created user %q\n", *username)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "useradm: "+format+"\n", args...)
	os.Exit(1)
}
