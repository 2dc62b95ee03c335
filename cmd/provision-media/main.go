package main

import (
	"log"
	"strings"

	"rkive-api/config"
	"rkive-api/docgen"
	"rkive-api/models"
	"rkive-api/services"
	"rkive-api/utils"
)

func main() {
	log.Println("Provisioning media directories and checking templates...")

	settings := config.Load()

	created, err := utils.EnsureMediaDirs(settings.MediaRoot)
	if err != nil {
		log.Fatalf("failed to prepare media root %s: %v", settings.MediaRoot, err)
	}
	for _, dir := range created {
		log.Printf("Created %s/%s", settings.MediaRoot, dir)
	}

	var missing []string
	for _, kind := range []models.DocumentKind{models.DocumentApplication, models.DocumentPanel} {
		spec, err := services.SpecFor(kind)
		if err != nil {
			log.Fatal(err)
		}
		templatePath := settings.TemplatePath(spec.Template)
		if err := docgen.CheckTemplate(templatePath); err != nil {
			log.Printf("Template for %s unusable at %s: %v", kind, templatePath, err)
			missing = append(missing, spec.Template)
			continue
		}
		log.Printf("Template for %s found at %s", kind, templatePath)
	}

	if len(missing) > 0 {
		log.Fatalf("completed with errors. missing templates: %s", strings.Join(missing, ", "))
	}
	log.Printf("Media root %s ready (%d directories created)", settings.MediaRoot, len(created))
}
