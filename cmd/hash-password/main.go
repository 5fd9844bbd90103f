// Command hash-password prints bcrypt hashes for the passwords given as
// arguments, for seeding tb_user rows by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-password [-cost N] <password>...")
		os.Exit(2)
	}

	hasher := &auth.BcryptHasher{Cost: *cost}
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash %q: %v\n", password, err)
			os.Exit(1)
		}
		fmt.Println(hash)
	}
}
