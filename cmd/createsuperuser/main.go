package main

import (
	"fmt"
	"log"
	"os"

	"rkive-api/config"
	"rkive-api/services"
	"rkive-api/utils"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("createsuperuser: %v", err)
	}
}

func run() error {
	var email, password, firstName, lastName string

	flagSet := pflag.NewFlagSet("createsuperuser", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "account email (required)")
	flagSet.StringVar(&password, "password", "", "account password (required)")
	flagSet.StringVar(&firstName, "first", "", "first name")
	flagSet.StringVar(&lastName, "last", "", "last name")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if email == "" || password == "" {
		flagSet.PrintDefaults()
		return fmt.Errorf("--email and --password are required")
	}
	if !utils.ValidateEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if ok, message := utils.ValidatePassword(password); !ok {
		return fmt.Errorf("%s", message)
	}

	config.Load()
	config.InitDB()

	account, err := services.NewAccountService(config.DB).CreateSuperuser(email, password, firstName, lastName)
	if err != nil {
		return err
	}
	log.Printf("Superuser %s created (id=%d, roles=%v)", account.Email, account.ID, account.Roles.Names())
	return nil
}
