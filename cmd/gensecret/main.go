package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretKeyBytesLen = 32

func main() {
	if err := run(os.Args[1:], rand.Reader, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

// Print random hex encoded secret suitable for SECRET_KEY
func run(args []string, random io.Reader, out io.Writer) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	length := fs.IntP("bytes", "b", defaultSecretKeyBytesLen, "Secret length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *length < 16 {
		return fmt.Errorf("secret must be at least 16 bytes, got %d", *length)
	}

	b := make([]byte, *length)
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, hex.EncodeToString(b))
	return err
}
