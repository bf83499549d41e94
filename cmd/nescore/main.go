// Command nescore runs an iNES ROM in a desktop window.
//
// The ROM comes from one of two sources: a file path (raw .nes or a
// compressed archive), or an encoded payload produced by a transfer
// tool, decoded and verified before it reaches the core.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"

	"github.com/user-none/nescore/nes"
	"github.com/user-none/nescore/romloader"
	"github.com/user-none/nescore/standalone"
	"github.com/user-none/nescore/transport"
)

func main() {
	romPath := flag.String("rom", "", "path to a .nes ROM or an archive containing one (file picker when omitted)")
	scale := flag.Int("scale", 3, "initial window scale factor")
	fullscreen := flag.Bool("fullscreen", false, "start in fullscreen")

	encodedPath := flag.String("encoded", "", "path to an encoded ROM payload instead of -rom")
	encoding := flag.String("encoding", "base64", "payload encoding: base64, base64url or hex")
	declaredSize := flag.Int("size", 0, "declared decoded size in bytes (0 skips the check)")
	declaredHash := flag.String("sha256", "", "declared SHA-256 of the decoded ROM (hex, empty skips the check)")

	flag.Parse()

	log.SetFlags(log.LstdFlags)
	log.SetPrefix("nescore: ")

	rom, name, err := resolveROM(*romPath, *encodedPath, *encoding, *declaredSize, *declaredHash)
	if err != nil {
		log.Fatal(err)
	}

	core := nes.New()
	if err := core.Init(); err != nil {
		log.Fatalf("core init failed: %v", err)
	}
	if err := core.LoadCartridge(rom); err != nil {
		log.Fatalf("failed to load %s: %v", name, err)
	}

	opts := standalone.Options{
		Title:      fmt.Sprintf("nescore - %s", name),
		Scale:      *scale,
		Fullscreen: *fullscreen,
	}
	if err := standalone.Run(core, opts); err != nil {
		log.Fatal(err)
	}
}

// resolveROM picks the ROM source: encoded payload, file path, or an
// interactive file picker as the fallback.
func resolveROM(romPath, encodedPath, encoding string, size int, hash string) ([]byte, string, error) {
	if encodedPath != "" {
		return loadEncoded(encodedPath, encoding, size, hash)
	}

	if romPath == "" {
		picked, err := dialog.File().
			Title("Select NES ROM").
			Filter("NES ROMs and archives", "nes", "zip", "7z", "rar", "gz").
			Load()
		if err != nil {
			return nil, "", fmt.Errorf("no ROM selected: %w", err)
		}
		romPath = picked
	}

	rom, name, err := romloader.Load(romPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load ROM: %w", err)
	}
	return rom, name, nil
}

// loadEncoded reads an encoded payload file and decodes it with the
// declared metadata. Whitespace is stripped so payloads copied from
// line-wrapped sources still decode.
func loadEncoded(path, encoding string, size int, hash string) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read payload: %w", err)
	}
	payload := strings.Join(strings.Fields(string(raw)), "")

	res, err := transport.Decode(payload, transport.Meta{
		Encoding:    transport.Encoding(encoding),
		Compression: transport.CompressionNone,
		Size:        size,
		SHA256:      hash,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode payload: %w", err)
	}
	log.Printf("decoded %d bytes, sha256 %s", len(res.Data), res.SHA256)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return res.Data, name, nil
}
