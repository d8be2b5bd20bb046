package conversation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	placeholderProduct = "Equipment (details in conversation)"
	maxAddressLen      = 500
)

var (
	brandModelRE = regexp.MustCompile(`(?i)(?:CAT|Caterpillar|Komatsu|Volvo|John Deere|Bobcat|Kubota)\s+[A-Z0-9-]+(?:\s+(?:excavator|bulldozer|loader|grader|crane|truck|hauler|backhoe)s?)?`)
	equipNounRE  = regexp.MustCompile(`(?i)(?:excavator|bulldozer|dump truck|loader|grader|crane|truck|hauler|backhoe)s?`)

	equipNouns = []string{"excavator", "bulldozer", "loader", "grader", "crane", "truck", "hauler", "backhoe"}

	quantityREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:units?|pieces?|items?)`),
		regexp.MustCompile(`(?i)quantity[:\s]+(\d+)`),
		regexp.MustCompile(`(?i)(?:need|require|want)\s+(\d+)`),
	}

	deadlineREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:by|before|deadline|due)\s+([A-Z][a-z]+\s+\d{1,2},?\s+\d{4})`),
		regexp.MustCompile(`(?i)(?:by|before|deadline|due)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)within\s+(\d+\s+(?:days?|weeks?|months?))`),
		regexp.MustCompile(`(?i)(?:need|require).*(?:by|before)\s+([A-Z][a-z]+\s+\d{1,2})`),
	}

	addressREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ship to|shipping address|deliver to|delivery address)[:\s]+([^\n]+(?:\n[^\n]+){0,2})`),
		regexp.MustCompile(`(?i)address[:\s]+([^\n]+(?:\n[^\n]+){0,1})`),
	}

	companyREs = []*regexp.Regexp{
		regexp.MustCompile(`(?:from|at|@)\s+([A-Z][A-Za-z\s&]+(?:Inc|LLC|Ltd|Corp|Corporation|Company))`),
		regexp.MustCompile(`\n([A-Z][A-Za-z\s&]+(?:Inc|LLC|Ltd|Corp|Corporation|Company))\n`),
	}

	budgetRE = regexp.MustCompile(`(?i)budget[^\d$]{0,12}\$?\s*([\d,]+(?:\.\d{1,2})?)`)

	wsRE = regexp.MustCompile(`\s+`)
)

// urgencyTiers are checked in priority order; the first tier with any
// keyword present wins.
var urgencyTiers = []struct {
	level    string
	keywords []string
}{
	{UrgencyUrgent, []string{"urgent", "asap", "immediately", "emergency", "rush"}},
	{UrgencyHigh, []string{"soon", "quickly", "expedite", "fast"}},
	{UrgencyLow, []string{"when possible", "no rush", "flexible"}},
}

// Analyze derives a Summary from one conversation. It never fails: a field
// without a signal in the text gets its zero/default value.
func Analyze(subject, body, senderName string) Summary {
	return Summary{
		Products:        ExtractProducts(body),
		Quantities:      ExtractQuantities(body),
		Urgency:         DetectUrgency(subject, body),
		Deadline:        ExtractDeadline(body),
		ShippingAddress: ExtractShippingAddress(body),
		Comment:         extractComment(body),
		Budget:          extractBudget(body),
		CustomerName:    strings.TrimSpace(senderName),
		CustomerCompany: ExtractCompany(body),
	}
}

type match struct {
	start, end int
	text       string
}

// ExtractProducts scans for brand+model tokens first, then generic equipment
// nouns that do not overlap a brand match. Order of first occurrence is
// preserved and exact duplicates are dropped.
func ExtractProducts(body string) []string {
	var found []match
	for _, loc := range brandModelRE.FindAllStringIndex(body, -1) {
		found = append(found, match{loc[0], loc[1], body[loc[0]:loc[1]]})
	}
	for _, loc := range equipNounRE.FindAllStringIndex(body, -1) {
		if overlaps(found, loc[0], loc[1]) {
			continue
		}
		found = append(found, match{loc[0], loc[1], body[loc[0]:loc[1]]})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	seen := map[string]bool{}
	var products []string
	for _, m := range found {
		name := normalizeProduct(m.text)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		products = append(products, name)
	}
	if len(products) == 0 {
		return []string{placeholderProduct}
	}
	return products
}

func overlaps(ms []match, start, end int) bool {
	for _, m := range ms {
		if start < m.end && end > m.start {
			return true
		}
	}
	return false
}

// normalizeProduct collapses whitespace and strips the plural s from a
// trailing equipment noun ("CAT 320 Excavators" -> "CAT 320 Excavator").
func normalizeProduct(s string) string {
	s = wsRE.ReplaceAllString(strings.TrimSpace(s), " ")
	lower := strings.ToLower(s)
	for _, noun := range equipNouns {
		if strings.HasSuffix(lower, noun+"s") {
			return s[:len(s)-1]
		}
	}
	return s
}

// ExtractQuantities collects distinct positive integers from quantity
// phrases, in order of first occurrence per pattern. Defaults to [1].
func ExtractQuantities(body string) []int {
	var out []int
	seen := map[int]bool{}
	for _, re := range quantityREs {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return []int{1}
	}
	return out
}

// DetectUrgency classifies subject+body into one of the urgency levels.
// Tiers are mutually exclusive and checked in priority order, so a message
// containing both "urgent" and "flexible" is urgent.
func DetectUrgency(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, tier := range urgencyTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(text, kw) {
				return tier.level
			}
		}
	}
	return UrgencyNormal
}

// ExtractDeadline returns the first matched deadline phrase verbatim, with
// no date parsing or normalization.
func ExtractDeadline(body string) string {
	for _, re := range deadlineREs {
		if m := re.FindStringSubmatch(body); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractShippingAddress returns the text following an explicit shipping
// label, up to three lines, whitespace collapsed and capped at 500 chars.
func ExtractShippingAddress(body string) string {
	for _, re := range addressREs {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		addr := wsRE.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(addr) > maxAddressLen {
			addr = addr[:maxAddressLen]
		}
		return addr
	}
	return ""
}

// ExtractCompany looks for a capitalized phrase ending in a legal-entity
// suffix, typically from a signature line.
func ExtractCompany(body string) string {
	for _, re := range companyREs {
		if m := re.FindStringSubmatch(body); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractBudget(body string) decimal.NullDecimal {
	m := budgetRE.FindStringSubmatch(body)
	if m == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// extractComment picks the first meaningful sentence as a free-text note,
// skipping greetings.
func extractComment(body string) string {
	for i, sentence := range strings.Split(body, ".") {
		if i >= 3 {
			break
		}
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 {
			continue
		}
		lower := strings.ToLower(sentence)
		if strings.HasPrefix(lower, "hi") || strings.HasPrefix(lower, "hello") ||
			strings.HasPrefix(lower, "dear") || strings.HasPrefix(lower, "thank") {
			continue
		}
		return sentence + "."
	}
	return ""
}
