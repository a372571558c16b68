package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CodeTable maps canonical schedule signatures to payroll codes. Lookups are
// exact-match only: a signature without a registered code resolves to "?"
// until someone registers it.
type CodeTable map[string]CodeEntry

type CodeEntry struct {
	Codigo       string   `json:"codigo"`
	Alternativas []string `json:"alternativas,omitempty"`
}

// CodeRow is a table entry paired with its signature, for listings and
// exports.
type CodeRow struct {
	Signature    string   `json:"signature"`
	Display      string   `json:"display"`
	Codigo       string   `json:"codigo"`
	Hours        float64  `json:"hours"`
	Alternativas []string `json:"alternativas,omitempty"`
}

func (t CodeTable) Lookup(signature string) (CodeEntry, bool) {
	entry, ok := t[signature]
	return entry, ok
}

// Upsert registers or replaces the code for a signature. The signature must
// follow the one-or-two segment grammar and the code must be numeric; codes
// are stored zero-padded to five digits.
func (t CodeTable) Upsert(signature, codigo string) error {
	signature = strings.TrimSpace(signature)
	if !ValidSignature(signature) {
		return fmt.Errorf("invalid signature %q: expected HH:MM-HH:MM or HH:MM-HH:MM+HH:MM-HH:MM", signature)
	}
	normalized, err := NormalizeCodigo(codigo)
	if err != nil {
		return err
	}
	entry := t[signature]
	entry.Codigo = normalized
	t[signature] = entry
	return nil
}

func (t CodeTable) Remove(signature string) bool {
	if _, ok := t[signature]; !ok {
		return false
	}
	delete(t, signature)
	return true
}

// Rows returns the table sorted by signature.
func (t CodeTable) Rows() []CodeRow {
	rows := make([]CodeRow, 0, len(t))
	for signature, entry := range t {
		rows = append(rows, CodeRow{
			Signature:    signature,
			Display:      Humanize(signature),
			Codigo:       entry.Codigo,
			Hours:        ComputeDuration(signature),
			Alternativas: entry.Alternativas,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Signature < rows[j].Signature })
	return rows
}

// NormalizeCodigo validates a payroll code and pads it to five digits.
func NormalizeCodigo(codigo string) (string, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return "", errors.New("codigo is required")
	}
	if len(codigo) > 5 {
		return "", fmt.Errorf("codigo %q is longer than 5 digits", codigo)
	}
	if _, err := strconv.Atoi(codigo); err != nil {
		return "", fmt.Errorf("codigo %q must be numeric", codigo)
	}
	return strings.Repeat("0", 5-len(codigo)) + codigo, nil
}
