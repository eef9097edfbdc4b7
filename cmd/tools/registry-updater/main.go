// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"campus-notifier/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/trigger-registry.json", "Path to registry file")
	}

	// Add command flags
	name := addCmd.String("name", "", "Trigger name (e.g., notify-review-created)")
	description := addCmd.String("description", "", "Description")
	event := addCmd.String("event", "", "Event type (created, updated, scheduled)")
	document := addCmd.String("document", "", "Firestore document pattern (e.g., reviews/{reviewId})")
	webhookKind := addCmd.String("webhookKind", "", "Discord webhook kind")
	schedule := addCmd.String("schedule", "", "Cron schedule for scheduled triggers")
	timeZone := addCmd.String("timeZone", "", "Time zone for scheduled triggers")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Trigger name to update")
	field := updateCmd.String("field", "", "Field to update (description, document, webhookKind, schedule, timeZone)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *event == "" {
			fmt.Println("Error: name and event are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		t := registry.Trigger{
			Name:        *name,
			Description: *description,
			Event:       *event,
			Document:    *document,
			WebhookKind: *webhookKind,
			Schedule:    *schedule,
			TimeZone:    *timeZone,
		}
		if err := addTrigger(t); err != nil {
			fmt.Printf("Error adding trigger: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added trigger: %s\n", *name)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" {
			fmt.Println("Error: name and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateTrigger(*nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating trigger: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated trigger %s, field %s to %q\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if len(reg.Triggers) == 0 {
			fmt.Println("Registry validation failed: registry contains no triggers")
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d triggers.\n", len(reg.Triggers))

	case "help":
		fallthrough
	default:
		help()
	}
}

func addTrigger(t registry.Trigger) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.TriggerRegistry{Version: "1.0.0"}
	}

	reg.Triggers = append(reg.Triggers, t)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return registry.Save(reg, registryPath)
}

func updateTrigger(name, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var t *registry.Trigger
	for i := range reg.Triggers {
		if reg.Triggers[i].Name == name {
			t = &reg.Triggers[i]
			break
		}
	}
	if t == nil {
		return fmt.Errorf("trigger %s not found", name)
	}

	switch field {
	case "description":
		t.Description = value
	case "document":
		t.Document = value
	case "webhookKind":
		t.WebhookKind = value
	case "schedule":
		t.Schedule = value
	case "timeZone":
		t.TimeZone = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return registry.Save(reg, registryPath)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a trigger to the registry
  update   Update a field of an existing trigger
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -name notify-review-created -event created -document "reviews/{reviewId}" -webhookKind review
  registry-updater update -name refresh-menu-images -field schedule -value "30 5 * * *"
  registry-updater validate -path configs/trigger-registry.json`)
}
