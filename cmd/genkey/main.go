// Command genkey prints a fresh base64 key for ENCRYPTION_KEY.
package main

import (
	"fmt"
	"log"

	"cleanagent-backend/pkg/crypto"
)

func main() {
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal("Failed to generate key:", err)
	}
	fmt.Println(key)
}
