package vatin

const nifLength = 9

// nifPrefixes are the taxpayer-category leading digits accepted for a
// Portuguese NIF (individuals, companies, public bodies, other entities).
const nifPrefixes = "125689"

// validNIF verifies the check digit of a Portuguese NIF (Número de
// Identificação Fiscal). The first eight digits are weighted 9 down to 2,
// the remainder of the weighted sum mod 11 determines the expected ninth
// digit: (11 - remainder) % 10 when the remainder is 2 or more, 0 otherwise.
func validNIF(nif string) bool {
	if len(nif) != nifLength {
		return false
	}
	digits := make([]int, 0, nifLength)
	for _, r := range nif {
		if r < '0' || r > '9' {
			return false
		}
		digits = append(digits, int(r-'0'))
	}

	valid := false
	for _, p := range nifPrefixes {
		if digits[0] == int(p-'0') {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sum := 0
	for i, d := range digits[:nifLength-1] {
		sum += d * (9 - i)
	}
	remainder := sum % 11
	check := 0
	if remainder >= 2 {
		check = (11 - remainder) % 10
	}
	return digits[nifLength-1] == check
}
