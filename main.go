package main

import (
	"context"
	"log"
	"os"

	"Motorhouse/CronJobs"
	"Motorhouse/FiberConfig"
	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	Models.Connect()
	local := Models.NewLocalStore(Models.DB)

	var remote Sync.RemoteStore
	projectID := os.Getenv("MH_FIREBASE_PROJECT")
	credentials := os.Getenv("MH_FIREBASE_CREDENTIALS")
	if projectID != "" {
		store, err := Sync.NewFirestoreStore(context.Background(), projectID, credentials)
		if err != nil {
			log.Printf("Could not initialize Firestore, running offline: %v", err)
		} else {
			remote = store
		}
	} else {
		log.Println("MH_FIREBASE_PROJECT not set, running offline")
	}

	coordinator := Sync.NewCoordinator(local, remote)
	if remote != nil {
		if err := coordinator.StartSync(context.Background()); err != nil {
			log.Printf("Could not start cloud sync, staying offline: %v", err)
		}
	}

	overdueChecker := CronJobs.NewOverdueChecker(coordinator, CronJobs.OverdueDays, false)
	if err := overdueChecker.Start(); err != nil {
		log.Printf("Failed to start overdue checker: %v", err)
	}
	defer overdueChecker.Stop()

	FiberConfig.FiberConfig(coordinator)
}
