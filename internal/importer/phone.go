package importer

import "strings"

// NormalizePhone canonicalizes a Moroccan phone number into the local
// 10-digit form (leading 0). Returns false when the value cannot be a
// valid Moroccan mobile or landline number.
//
// Accepted inputs: local "0612345678", international "+212612345678",
// "00212612345678" or bare "212612345678", with any mix of spaces,
// dots, dashes and parentheses in between. Normalization is idempotent.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '.', '-', '(', ')', '\t':
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()

	switch {
	case strings.HasPrefix(s, "+212"):
		s = "0" + s[len("+212"):]
	case strings.HasPrefix(s, "00212"):
		s = "0" + s[len("00212"):]
	case strings.HasPrefix(s, "212") && len(s) == 12:
		s = "0" + s[len("212"):]
	}

	if len(s) != 10 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	switch s[:2] {
	case "06", "07", "05":
		return s, true
	}
	return "", false
}
