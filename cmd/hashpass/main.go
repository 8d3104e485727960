package main

import (
	"fmt"
	"os"

	"github.com/rosvybory/observadores/internal/auth"
)

// Sem argumento gera uma senha numérica nova e imprime senha e hash.
func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		generated, err := auth.GeneratePassword()
		if err != nil {
			fmt.Fprintf(os.Stderr, "password error: %v\n", err)
			os.Exit(1)
		}
		password = generated
		fmt.Println(password)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
