// Package cpf validates and formats Brazilian CPF identifiers. The check-digit
// algorithm is fixed by law, so the math here is not a design choice.
package cpf

import "strings"

// Normalize strips every non-digit character from s
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s carries a structurally valid CPF. It accepts both
// punctuated (###.###.###-##) and bare 11-digit forms.
func Valid(s string) bool {
	digits := Normalize(s)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}
	return checkDigit(digits, 9) && checkDigit(digits, 10)
}

// Format renders an 11-digit CPF in the canonical punctuated display form.
// Inputs that are not 11 digits after normalization are returned unchanged.
func Format(s string) string {
	d := Normalize(s)
	if len(d) != 11 {
		return s
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// checkDigit verifies the verifier digit at position pos (9 or 10). The
// weighted sum runs over the pos preceding digits with weights pos+1 down
// to 2; the expected digit is (sum*10) mod 11, with 10 collapsing to 0.
func checkDigit(digits string, pos int) bool {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(digits[i]-'0') * (pos + 1 - i)
	}
	check := (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	return check == int(digits[pos]-'0')
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
