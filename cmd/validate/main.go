package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
)

var filenameRe = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <adventure.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("adventure file must have .json extension: %s", baseName)
	}
	if !filenameRe.MatchString(strings.TrimSuffix(baseName, ".json")) {
		return fmt.Errorf("adventure filename '%s' must be lowercase snake_case (e.g. midnight_vigil.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var adv adventure.Adventure
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&adv); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := adv.Validate(); err != nil {
		var verr *adventure.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("validation errors in %s:\n  %s", filename, strings.Join(verr.Problems, "\n  "))
		}
		return err
	}

	fmt.Printf("  %d locations, starting at %q\n", len(adv.Locations), adv.StartingLocationID)
	return nil
}
