package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret keys: %v\n", err)
		os.Exit(1)
	}
}

// Print n random hex secrets, one per line. Access and refresh tokens need two distinct ones
func run(w io.Writer, args []string) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	n := fs.IntP("count", "n", 2, "Number of secrets to generate")
	size := fs.IntP("bytes", "b", SecretKeyBytesLen, "Secret length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 || *size < 16 {
		return errors.New("count must be positive and length at least 16 bytes")
	}

	b := make([]byte, *size)
	for range *n {
		if _, err := rand.Read(b); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, hex.EncodeToString(b)); err != nil {
			return err
		}
	}

	return nil
}
