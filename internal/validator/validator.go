package validator

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/decklist"
)

// LargeQuantity is the copy count above which an entry is flagged as suspicious
const LargeQuantity = 40

// "Lightning Bolt (2X2)" with no collector number after the set
var danglingSetPattern = regexp.MustCompile(`\s\(([A-Za-z0-9]{2,6})\)$`)

type ValidationResults struct {
	Errors   []string
	Warnings []string
	Cards    int // total copies across all valid entries
	Entries  int
}

type Validator struct {
	DeckPath string
	Results  ValidationResults

	requests []card.Request
}

func NewValidator(deckPath string) *Validator {
	return &Validator{
		DeckPath: deckPath,
		Results:  ValidationResults{},
	}
}

// Validate checks a decklist (text or Moxfield CSV) without touching the
// network. Unlike the print pipeline it keeps going after a bad line so every
// problem is reported at once.
func (v *Validator) Validate() (ValidationResults, error) {
	if err := v.validateEntries(); err != nil {
		return v.Results, err
	}

	if len(v.requests) == 0 && len(v.Results.Errors) == 0 {
		v.Results.Errors = append(v.Results.Errors, "no card entries found")
	}

	v.validateDuplicates()
	v.validateQuantities()
	v.validatePrintings()

	for _, req := range v.requests {
		v.Results.Cards += req.Quantity
	}
	v.Results.Entries = len(v.requests)

	return v.Results, nil
}

func (v *Validator) validateEntries() error {
	if strings.EqualFold(filepath.Ext(v.DeckPath), ".csv") {
		return v.validateCSV()
	}

	file, err := os.Open(v.DeckPath)
	if err != nil {
		return fmt.Errorf("error opening decklist: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		req, ok, err := decklist.ParseEntry(line)
		if err != nil {
			var perr *decklist.ParseError
			if errors.As(err, &perr) {
				perr.Line = lineNo
			}
			v.Results.Errors = append(v.Results.Errors, err.Error())
			continue
		}
		if ok {
			req.Line = lineNo
			v.requests = append(v.requests, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading decklist: %w", err)
	}
	return nil
}

func (v *Validator) validateCSV() error {
	requests, err := decklist.LoadCSV(v.DeckPath)
	if err != nil {
		var perr *decklist.ParseError
		if errors.As(err, &perr) {
			v.Results.Errors = append(v.Results.Errors, perr.Error())
			return nil
		}
		return err
	}
	v.requests = requests
	return nil
}

// validateDuplicates warns when the same card appears on several lines
func (v *Validator) validateDuplicates() {
	firstSeen := make(map[string]int)
	for _, req := range v.requests {
		key := cache.Key(req.Name, req.SetCode, req.CollectorNumber)
		if first, ok := firstSeen[key]; ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("line %d: %s already listed on line %d", req.Line, req.Name, first))
			continue
		}
		firstSeen[key] = req.Line
	}
}

// validateQuantities flags copy counts that are probably typos
func (v *Validator) validateQuantities() {
	for _, req := range v.requests {
		if req.Quantity > LargeQuantity {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("line %d: %d copies of %s (%d pages for this card alone)",
					req.Line, req.Quantity, req.Name, (req.Quantity+8)/9))
		}
	}
}

// validatePrintings warns about set codes that cannot pin a printing
func (v *Validator) validatePrintings() {
	for _, req := range v.requests {
		switch {
		case req.SetCode != "" && req.CollectorNumber == "":
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("line %d: set %s given without a collector number, looking up %s by name",
					req.Line, strings.ToUpper(req.SetCode), req.Name))
		case danglingSetPattern.MatchString(req.Name):
			m := danglingSetPattern.FindStringSubmatch(req.Name)
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("line %d: set (%s) given without a collector number, it will be treated as part of the name",
					req.Line, m[1]))
		}
	}
}
