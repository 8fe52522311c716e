package decklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/arcanaland/proxymancer/internal/card"
)

var (
	// 1 Lightning Bolt (2X2) 117 *F*
	moxfieldPattern = regexp.MustCompile(`^(-?\d+)[xX]?\s+(.+?)\s+\(([A-Za-z0-9]+)\)\s+(\S+)(?:\s+\*[A-Za-z]+\*)?$`)
	// 4x Lightning Bolt, 4 Lightning Bolt
	quantityPattern = regexp.MustCompile(`^(-?\d+)[xX]?\s+(.+)$`)
	// "4x" with nothing after it
	bareQuantityPattern = regexp.MustCompile(`^-?\d+[xX]?$`)
)

// MaxQuantity is the largest copy count accepted for a single entry
const MaxQuantity = 1000

// Section headers emitted by Moxfield exports
var sectionHeaders = map[string]bool{
	"deck":        true,
	"sideboard":   true,
	"commander":   true,
	"companion":   true,
	"companions":  true,
	"maybeboard":  true,
	"mainboard":   true,
	"considering": true,
	"acquired":    true,
}

// ParseError describes a malformed decklist entry
type ParseError struct {
	Line   int    // 1-based line number, 0 for command line arguments
	Text   string // The offending entry
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("entry %q: %s", e.Text, e.Reason)
}

// ParseEntry parses a single decklist entry such as "4x Lightning Bolt".
// It returns ok=false for lines that carry no card (blank lines, comments,
// section headers).
func ParseEntry(entry string) (card.Request, bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.HasPrefix(entry, "#") || strings.HasPrefix(entry, "//") {
		return card.Request{}, false, nil
	}
	if sectionHeaders[strings.ToLower(strings.TrimSuffix(entry, ":"))] {
		return card.Request{}, false, nil
	}

	if bareQuantityPattern.MatchString(entry) {
		return card.Request{}, false, &ParseError{Text: entry, Reason: "missing card name"}
	}

	if m := moxfieldPattern.FindStringSubmatch(entry); m != nil {
		qty, err := parseQuantity(m[1], entry)
		if err != nil {
			return card.Request{}, false, err
		}
		return card.Request{
			Name:            strings.TrimSpace(m[2]),
			Quantity:        qty,
			SetCode:         strings.ToLower(m[3]),
			CollectorNumber: m[4],
		}, true, nil
	}

	if m := quantityPattern.FindStringSubmatch(entry); m != nil {
		qty, err := parseQuantity(m[1], entry)
		if err != nil {
			return card.Request{}, false, err
		}
		return card.Request{Name: strings.TrimSpace(m[2]), Quantity: qty}, true, nil
	}

	return card.Request{Name: entry, Quantity: 1}, true, nil
}

func parseQuantity(s, entry string) (int, error) {
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Text: entry, Reason: "invalid quantity"}
	}
	if qty <= 0 {
		return 0, &ParseError{Text: entry, Reason: "quantity must be positive"}
	}
	if qty > MaxQuantity {
		return 0, &ParseError{Text: entry, Reason: fmt.Sprintf("quantity exceeds %d", MaxQuantity)}
	}
	return qty, nil
}

// ParseArgs parses card entries given on the command line. Unlike decklist
// lines, a blank argument is an error.
func ParseArgs(args []string) ([]card.Request, error) {
	var requests []card.Request
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return nil, &ParseError{Text: arg, Reason: "empty card entry"}
		}
		req, ok, err := ParseEntry(arg)
		if err != nil {
			return nil, err
		}
		if ok {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

// Parse reads a decklist with one entry per line. Parsing stops at the first
// malformed line.
func Parse(r io.Reader) ([]card.Request, error) {
	var requests []card.Request

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		req, ok, err := ParseEntry(line)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Line = lineNo
			}
			return nil, err
		}
		if !ok {
			continue
		}
		req.Line = lineNo
		requests = append(requests, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading decklist: %w", err)
	}

	return requests, nil
}

// LoadFile parses the decklist file at path
func LoadFile(path string) ([]card.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening decklist: %w", err)
	}
	defer file.Close()

	requests, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return requests, nil
}
