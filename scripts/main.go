package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flexprice/lifecycle/scripts/internal"
	"github.com/joho/godotenv"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "import-legacy",
		Description: "Import subscriptions from a JSON file of legacy records",
		Run:         internal.ImportLegacySubscriptions,
	},
	{
		Name:        "assign-plan",
		Description: "Subscribe a list of subscribers to a plan",
		Run:         internal.AssignPlanToSubscribers,
	},
}

func main() {
	// Define command line flags
	var (
		listCommands      bool
		cmdName           string
		subscriptionsFile string
		planID            string
		subscriberIDs     string
		startTrial        bool
	)

	flag.BoolVar(&listCommands, "list", false, "List all available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.StringVar(&subscriptionsFile, "subscriptions-file", "", "Path to legacy subscriptions JSON file")
	flag.StringVar(&planID, "plan-id", "", "Plan ID for plan assignment")
	flag.StringVar(&subscriberIDs, "subscriber-ids", "", "Comma separated subscriber IDs")
	flag.BoolVar(&startTrial, "start-trial", false, "Start the plan's trial for new subscriptions")

	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-20s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if cmdName == "" {
		log.Fatal("Please specify a command to run using -cmd flag. Use -list to see available commands.")
	}

	_ = godotenv.Load()

	// Set command-specific environment variables
	if subscriptionsFile != "" {
		os.Setenv("SUBSCRIPTIONS_FILE", subscriptionsFile)
	}
	if planID != "" {
		os.Setenv("PLAN_ID", planID)
	}
	if subscriberIDs != "" {
		os.Setenv("SUBSCRIBER_IDS", subscriberIDs)
	}
	if startTrial {
		os.Setenv("START_TRIAL", "true")
	}

	// Find and run the command
	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("Error running command %s: %v", cmdName, err)
			}
			return
		}
	}

	log.Fatalf("Unknown command: %s. Use -list to see available commands.", cmdName)
}
