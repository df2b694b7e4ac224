package main

import (
	"fmt"
	"log"
	"os"

	"meetgogo/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "list":
		meetings, err := storageSvc.OpenSessions()
		if err != nil {
			log.Fatalf("Error listing meetings: %v", err)
		}
		if len(meetings) == 0 {
			fmt.Println("No open meetings.")
			return
		}
		for _, m := range meetings {
			fmt.Printf("%s\t%s\t%q\ttopic=%q\n", m.RoomID, m.MeetingID, m.MeetingName, m.Topic)
		}
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		meeting, err := storageSvc.SessionFor(roomID)
		if err != nil {
			log.Fatalf("Error looking up room %s: %v", roomID, err)
		}
		if meeting == nil {
			fmt.Printf("No open meeting in room %s.\n", roomID)
			os.Exit(1)
		}
		if err := storageSvc.CloseSession(roomID, meeting.MeetingID); err != nil {
			log.Fatalf("Error closing meeting: %v", err)
		}
		fmt.Printf("Meeting %s in room %s has been closed; its log was discarded.\n", meeting.MeetingID, roomID)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
