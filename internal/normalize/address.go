package normalize

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Address canonicalizes a phone-number-shaped sender address so that
// equivalent representations compare equal: "+234 801 111 2222" and
// "08011112222" both normalize to "08011112222". Non-numeric addresses pass
// through with their non-digit characters stripped.
func Address(raw, region string) string {
	if raw == "" {
		return ""
	}

	if num, err := phonenumbers.Parse(raw, region); err == nil {
		return "0" + strconv.FormatUint(num.GetNationalNumber(), 10)
	}

	digits := stripNonDigits(raw)
	if digits == "" {
		return ""
	}

	// Rewrite an international calling-code prefix to the local
	// leading-zero form.
	if cc := phonenumbers.GetCountryCodeForRegion(region); cc > 0 {
		prefix := strconv.Itoa(cc)
		if strings.HasPrefix(digits, prefix) && len(digits) > len(prefix) {
			return "0" + digits[len(prefix):]
		}
	}

	return digits
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, s)
}
