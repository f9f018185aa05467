package news

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Magnitude values outside this range are measurement noise or unrelated
// numbers, never a real earthquake magnitude.
const (
	minPlausibleMagnitude = 1.0
	maxPlausibleMagnitude = 10.0
)

// magnitudePatterns pair a number with a magnitude-indicating word, most
// specific first. Both Turkish and English agency phrasing appears in the
// configured feeds, and both `.` and `,` decimal separators.
var magnitudePatterns = []*regexp.Regexp{
	// "4.9 büyüklüğünde deprem", "4,9 şiddetinde"
	regexp.MustCompile(`(?i)(\d{1,2}[.,]\d{1,2})\s*(?:büyüklüğünde|büyüklüğündeki|büyüklüğünün|şiddetinde|şiddetindeki)`),
	// "büyüklüğü 4.9", "magnitude of 4.9", "richter: 4.9"
	regexp.MustCompile(`(?i)(?:büyüklüğü|büyüklük|magnitude(?:\s+of)?|richter)[:\s]+(\d{1,2}[.,]\d{1,2})`),
	// "4.9 magnitude earthquake", "4.9 richter"
	regexp.MustCompile(`(?i)(\d{1,2}[.,]\d{1,2})[\s-]*(?:magnitude|richter)`),
	// "M5.1", "M 5.1"
	regexp.MustCompile(`\bM\s?(\d{1,2}[.,]\d{1,2})`),
}

// magnitudeFallback is the loose pattern: an earthquake keyword followed
// eventually by a decimal number.
var magnitudeFallback = regexp.MustCompile(`(?i)(?:deprem|earthquake|quake)\D{0,60}?(\d{1,2}[.,]\d{1,2})`)

// ExtractMagnitude scans free text for a stated earthquake magnitude. The
// first in-range match across the ordered patterns wins; returns false when
// nothing plausible parses.
func ExtractMagnitude(text string) (float64, bool) {
	for _, pat := range magnitudePatterns {
		if v, ok := parseMagnitudeMatch(pat.FindStringSubmatch(text)); ok {
			return v, true
		}
	}
	if v, ok := parseMagnitudeMatch(magnitudeFallback.FindStringSubmatch(text)); ok {
		return v, true
	}
	return 0, false
}

func parseMagnitudeMatch(m []string) (float64, bool) {
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if v < minPlausibleMagnitude || v > maxPlausibleMagnitude {
		return 0, false
	}
	return v, true
}

// --------------------------------------------------------------------------
// Location keywords
// --------------------------------------------------------------------------

// turkishAccents are preserved when stripping non-alphabetic characters.
const turkishAccents = "çğıöşüâîû"

// upperFold maps Turkish uppercase letters before the generic lowering so
// that "İZMİR" and "IZMIR" both normalize to "izmir".
var upperFold = strings.NewReplacer(
	"İ", "i", "I", "i",
	"Ç", "ç", "Ğ", "ğ", "Ö", "ö", "Ş", "ş", "Ü", "ü",
	"Â", "â", "Î", "î", "Û", "û",
)

// spellingVariants expands a token into known equivalent spellings: city
// names written with and without diacritics, keyed by every form the fold
// of feed text can produce. Keeps "ELAZIĞ" in the feed matching both
// "Elazığ'da" and "Elazig" in article text.
var spellingVariants = map[string][]string{
	"kahramanmaraş": {"kahramanmaras"},
	"kahramanmaras": {"kahramanmaraş"},
	"şanlıurfa":     {"sanliurfa"},
	"şanliurfa":     {"şanlıurfa", "sanliurfa"},
	"sanliurfa":     {"şanlıurfa"},
	"elazığ":        {"elazig"},
	"elaziğ":        {"elazığ", "elazig"},
	"elazig":        {"elazığ"},
	"çanakkale":     {"canakkale"},
	"canakkale":     {"çanakkale"},
	"muğla":         {"mugla"},
	"mugla":         {"muğla"},
	"düzce":         {"duzce"},
	"duzce":         {"düzce"},
	"balıkesir":     {"balikesir"},
	"balikesir":     {"balıkesir"},
	"adıyaman":      {"adiyaman"},
	"adiyaman":      {"adıyaman"},
	"diyarbakır":    {"diyarbakir"},
	"diyarbakir":    {"diyarbakır"},
}

// foldLower lowercases text with Turkish-aware casing.
func foldLower(s string) string {
	return strings.ToLower(upperFold.Replace(s))
}

// ExtractLocationKeywords turns a feed location description into the token
// set later tested, substring-style, against article text. Tokens of one or
// two runes carry no signal and are dropped.
func ExtractLocationKeywords(location string) []string {
	lowered := foldLower(location)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || strings.ContainsRune(turkishAccents, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := make(map[string]bool)
	var keywords []string
	add := func(tok string) {
		if !seen[tok] {
			seen[tok] = true
			keywords = append(keywords, tok)
		}
	}

	for _, tok := range strings.Fields(b.String()) {
		if runeLen(tok) <= 2 {
			continue
		}
		add(tok)
		for _, variant := range spellingVariants[tok] {
			add(variant)
		}
	}
	return keywords
}

func runeLen(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
