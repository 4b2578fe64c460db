package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/Beamwelly/CRM-Application-sub001/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database",
	Long: `Seed the service type catalog and the developer account. With --demo,
also create two admin teams with leads, customers and a logged call.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer deps.DB.Close()

		report, err := seed.Run(context.Background(), deps.Container, seed.Options{
			DeveloperEmail: deps.Config.Seed.DeveloperEmail,
			Password:       deps.Config.Seed.DefaultPassword,
			Demo:           seedDemo,
			Clear:          clearData,
		})
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}

		if report.Cleared != nil {
			fmt.Printf("Cleared: %d leads, %d customers, %d communications\n",
				report.Cleared["leads"], report.Cleared["customers"], report.Cleared["communications"])
		}
		fmt.Printf("Service types added: %d\n", report.ServiceTypes)
		if report.DeveloperCreated {
			fmt.Println("Developer account created:", report.DeveloperID)
		} else {
			fmt.Println("Developer account already present:", report.DeveloperID)
		}
		if seedDemo {
			fmt.Printf("Demo data: %d users, %d leads, %d customers, %d communications\n",
				report.Users, report.Leads, report.Customers, report.Communications)
		}
	},
}
