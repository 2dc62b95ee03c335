package main

import (
	"fmt"
	"log"
	"os"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/services"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("patch-template: %v", err)
	}
}

func run() error {
	var kindName, rev, date, out string

	flagSet := pflag.NewFlagSet("patch-template", pflag.ContinueOnError)
	flagSet.StringVar(&kindName, "kind", "", "template to patch: application or panel")
	flagSet.StringVar(&rev, "rev", "", "revision number to stamp into {{rev}}")
	flagSet.StringVar(&date, "date", "", "revision date for {{date}} (default: today, e.g. January 2, 2006)")
	flagSet.StringVar(&out, "out", "", "write the patched copy here instead of replacing the template")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rev == "" {
		flagSet.PrintDefaults()
		return fmt.Errorf("--rev is required")
	}

	kind, err := models.ParseDocumentKind(kindName)
	if err != nil {
		return err
	}

	settings := config.Load()
	written, parts, err := services.NewTemplateService(settings).PatchRevision(kind, rev, date, out)
	if err != nil {
		return err
	}
	log.Printf("Patched %s (%d parts: %v)", written, len(parts), parts)
	return nil
}
