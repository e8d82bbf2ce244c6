// Command-line tool to create a user account without going through the API.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/utilities"
)

func main() {

	fmt.Println("Creating user account")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Enter password: ")
	password1, _ := reader.ReadString('\n')
	password1 = strings.TrimSpace(password1)

	fmt.Print("Confirm password: ")
	password2, _ := reader.ReadString('\n')
	password2 = strings.TrimSpace(password2)

	if password1 != password2 {
		log.Fatal("Passwords do not match")
	}
	if len(password1) < 8 {
		log.Fatal("Password should longer or equal to 8 characters")
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	var count int64
	db.Model(&model.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		log.Fatalf("Username %q already exist", username)
	}

	hashedPassword, err := utilities.HashPassword(password1)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	user := model.User{
		Username: username,
		Password: hashedPassword,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("failed to create user: ", err)
	}

	fmt.Println("User created successfully!")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("ID: %s\n", user.ID)
}
