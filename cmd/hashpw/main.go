package main

import (
	"fmt"
	"os"

	"secondbrain/internal/util"
)

// hashpw prints the bcrypt hash of a password for the auth.password_hash
// config value.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(1)
	}

	hash, err := util.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to hash password:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
