// Package quickorder turns typed shorthand such as "2x classic burger +cheese"
// into menu lines, for staff who key orders faster than they tap them.
package quickorder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxQuantity bounds the quantity a single line may ask for.
const MaxQuantity = 99

// ErrEmptyTicket is returned when the text holds no usable line.
var ErrEmptyTicket = errors.New("no items found in text")

// Ticket is the result of parsing a block of order text.
type Ticket struct {
	Lines    []Line
	Warnings []string // Lines that failed to parse
}

// Line is one parsed order line, e.g. "2 classic burger +cheese -- no pickles".
type Line struct {
	Raw          string
	Quantity     int
	Description  string
	ModifierIDs  []string
	Instructions string
}

// Parse splits text into order lines. Lines may also be separated by
// semicolons.
func Parse(text string) (*Ticket, error) {
	split := func(r rune) bool { return r == '\n' || r == ';' }

	var t Ticket
	for _, raw := range strings.FieldsFunc(text, split) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		line, err := parseLine(raw)
		if err != nil {
			t.Warnings = append(t.Warnings, fmt.Sprintf("skipped: %s", raw))
			continue
		}
		t.Lines = append(t.Lines, line)
	}
	if len(t.Lines) == 0 {
		return nil, ErrEmptyTicket
	}
	return &t, nil
}

// parseLine parses a single line. Everything after "--" is kept verbatim
// as kitchen instructions.
func parseLine(raw string) (Line, error) {
	line := Line{Raw: raw, Quantity: 1}

	body := raw
	if i := strings.Index(raw, "--"); i >= 0 {
		body = raw[:i]
		line.Instructions = strings.TrimSpace(raw[i+2:])
	}

	var desc []string
	qtyFound := false
	for _, tok := range strings.Fields(strings.ToLower(body)) {
		if strings.HasPrefix(tok, "+") {
			if id := strings.TrimPrefix(tok, "+"); id != "" {
				line.ModifierIDs = append(line.ModifierIDs, id)
			}
			continue
		}
		if q, ok := parseQuantity(tok); ok && !qtyFound {
			line.Quantity = q
			qtyFound = true
			continue
		}
		desc = append(desc, tok)
	}

	if len(desc) == 0 {
		return Line{}, fmt.Errorf("no item in line: %q", raw)
	}
	if line.Quantity < 1 || line.Quantity > MaxQuantity {
		return Line{}, fmt.Errorf("quantity out of range in line: %q", raw)
	}
	line.Description = strings.Join(desc, " ")
	return line, nil
}

// parseQuantity parses "2", "2x" and "x2".
func parseQuantity(tok string) (int, bool) {
	switch {
	case strings.HasSuffix(tok, "x"):
		tok = strings.TrimSuffix(tok, "x")
	case strings.HasPrefix(tok, "x"):
		tok = strings.TrimPrefix(tok, "x")
	}
	if tok == "" {
		return 0, false
	}
	q, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return q, true
}
