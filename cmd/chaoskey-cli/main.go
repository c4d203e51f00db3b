// Package main provides the chaoskey-cli command line interface for
// chaos-key operations: key generation, key verification, encryption and
// decryption of files wrapped in textual envelopes.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/cipher"
	"github.com/BackendStack21/chaos-key-go/envelope"
	"github.com/BackendStack21/chaos-key-go/keymat"
)

const appName = "chaoskey-cli"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch command := os.Args[1]; command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, chaoskey.Version)
	case "gen":
		err = runGen(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "encrypt":
		err = runEncrypt(os.Args[2:])
	case "decrypt":
		err = runDecrypt(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - chaos-key symmetric cipher CLI

USAGE:
    %s <COMMAND> [ARGUMENTS]

COMMANDS:
    gen <bits> <output_file>
        Generate chaos-key material and write the key envelope.

    verify <bits> <input_file>
        Verify the integrity tag of a key envelope.

    encrypt <bits> <key_file> <plaintext_file> <ciphertext_file>
        Encrypt a file under a key envelope.

    decrypt <bits> <key_file> <ciphertext_file> <output_file>
        Verify and decrypt a ciphertext envelope.

    version     Show version information
    help        Show this help message

<bits> must be a multiple of 64 (at least 64) and must match the bit size
recorded in the key file.
`, appName, appName)
}

func runGen(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s gen <bits> <output_file>", appName)
	}
	bits, err := parseBits(args[0])
	if err != nil {
		return err
	}

	km, err := keymat.Generate(bits)
	if err != nil {
		return err
	}
	defer km.Destroy()

	wrapped := envelope.Wrap(envelope.LabelChaosKey, keymat.Serialize(km))
	if err := os.WriteFile(args[1], []byte(wrapped), 0o600); err != nil {
		return fmt.Errorf("failed to save chaos key: %v", err)
	}

	fmt.Printf("Chaos key saved to %s\n", args[1])
	fmt.Printf("Fingerprint: %s\n", hex.EncodeToString(keymat.Fingerprint(km)))
	return nil
}

func runVerify(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s verify <bits> <input_file>", appName)
	}
	bits, err := parseBits(args[0])
	if err != nil {
		return err
	}

	km, err := loadKey(bits, args[1])
	if err != nil {
		return err
	}
	defer km.Destroy()

	fmt.Println("Chaos key verification successful.")
	fmt.Printf("Fingerprint: %s\n", hex.EncodeToString(keymat.Fingerprint(km)))
	return nil
}

func runEncrypt(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: %s encrypt <bits> <key_file> <plaintext_file> <ciphertext_file>", appName)
	}
	bits, err := parseBits(args[0])
	if err != nil {
		return err
	}

	km, err := loadKey(bits, args[1])
	if err != nil {
		return err
	}
	defer km.Destroy()

	plaintext, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read plaintext file: %v", err)
	}

	ciphertext, err := cipher.Encrypt(km, plaintext)
	if err != nil {
		return err
	}

	wrapped := envelope.Wrap(envelope.LabelCiphertext, ciphertext)
	if err := os.WriteFile(args[3], []byte(wrapped), 0o600); err != nil {
		return fmt.Errorf("failed to write ciphertext: %v", err)
	}

	fmt.Printf("Encryption successful. Ciphertext saved to %s\n", args[3])
	return nil
}

func runDecrypt(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: %s decrypt <bits> <key_file> <ciphertext_file> <output_file>", appName)
	}
	bits, err := parseBits(args[0])
	if err != nil {
		return err
	}

	km, err := loadKey(bits, args[1])
	if err != nil {
		return err
	}
	defer km.Destroy()

	wrapped, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read ciphertext file: %v", err)
	}
	ciphertext, err := envelope.Unwrap(envelope.LabelCiphertext, string(wrapped))
	if err != nil {
		return err
	}

	plaintext, err := cipher.Decrypt(km, ciphertext)
	if err != nil {
		return err
	}

	if err := os.WriteFile(args[3], plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write decrypted plaintext: %v", err)
	}

	fmt.Printf("Decryption successful. Plaintext saved to %s\n", args[3])
	return nil
}

// parseBits validates the <bits> argument shared by all commands.
func parseBits(arg string) (int, error) {
	bits, err := strconv.Atoi(arg)
	if err != nil || bits <= 0 {
		return 0, fmt.Errorf("invalid bits argument %q: must be a positive integer", arg)
	}
	if bits < 64 || bits%64 != 0 {
		return 0, fmt.Errorf("bits must be a multiple of 64 and at least 64, got %d", bits)
	}
	return bits, nil
}

// loadKey reads a key envelope, checks the recorded bit size against the
// <bits> argument, and verifies the integrity tag.
func loadKey(bits int, filename string) (*chaoskey.KeyMaterial, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %v", err)
	}
	blob, err := envelope.Unwrap(envelope.LabelChaosKey, string(content))
	if err != nil {
		return nil, err
	}
	km, err := keymat.Deserialize(blob)
	if err != nil {
		return nil, err
	}
	if km.Params.BitSize != bits {
		km.Destroy()
		return nil, fmt.Errorf("%w: key file records %d bits, argument says %d",
			chaoskey.ErrInvalidParameter, km.Params.BitSize, bits)
	}
	if !keymat.Verify(km) {
		km.Destroy()
		return nil, fmt.Errorf("%w: chaos key tag mismatch", chaoskey.ErrIntegrityFailure)
	}
	return km, nil
}
