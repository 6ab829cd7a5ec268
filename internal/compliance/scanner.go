// Package compliance scans submission text for sensitive-data patterns and
// region-specific legal triggers.
package compliance

import (
	"context"
	"regexp"
	"strings"
	"time"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/telemetry"
	"github.com/Sam231221/dkn-governance/internal/textnorm"
)

// Detector trigger counts. Bulk detectors fire only above these.
const (
	bulkEmailLimit = 5
	bulkPhoneLimit = 3
)

// Violation messages, fixed so scan output is deterministic and detector
// order in the result is stable.
const (
	ViolationGovernmentID = "Potential Social Security Number detected"
	ViolationPaymentCard  = "Potential payment card number detected"
	ViolationBulkEmails   = "Bulk email address collection detected"
	ViolationBulkPhones   = "Bulk phone number collection detected"
)

// Detector labels for telemetry.
const (
	detectorGovernmentID = "government_id"
	detectorPaymentCard  = "payment_card"
	detectorBulkEmail    = "bulk_email"
	detectorBulkPhone    = "bulk_phone"
	detectorRegional     = "regional_trigger"
)

var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}`)
	digitsOnly   = regexp.MustCompile(`\D`)
)

// dataProtectionLawFamilies are substrings (matched case-insensitively)
// identifying law descriptions that enable trigger-phrase checks for
// high-compliance regions.
var dataProtectionLawFamilies = []string{
	"data protection",
	"privacy act",
	"gdpr",
	"pipeda",
	"ccpa",
	"personal information",
}

// triggerPhrases suggest unredacted personal-data handling. Matched with
// Aho-Corasick over normalized text when a region's high-compliance rule
// names a data-protection law family.
var triggerPhrases = []string{
	"unredacted",
	"personal data attached",
	"customer records attached",
	"full name and address",
	"date of birth and address",
	"without consent",
	"exported user data",
	"raw customer list",
}

// RuleProvider looks up a region's compliance rule. Owned by the
// persistence layer; lookup failures degrade the scan rather than fail it.
type RuleProvider interface {
	GetComplianceRule(ctx context.Context, regionID string) (*domain.ComplianceRule, error)
}

// ScanResult is the outcome of one compliance scan.
type ScanResult struct {
	// Compliant is true iff Violations is empty.
	Compliant bool `json:"compliant"`
	// Violations holds messages in detector order.
	Violations []string `json:"violations"`
	// Degraded is set when the regional rule lookup failed and only the
	// generic detectors ran.
	Degraded bool `json:"degraded"`
}

// Scanner applies the fixed detector sequence plus regional augmentation.
// Scanning is a pure function of the text and the rule snapshot.
type Scanner struct {
	rules          RuleProvider
	triggerMatcher *ahocorasick.Matcher
	logger         logger.Logger
	telemetry      *telemetry.Provider
}

// NewScanner creates a scanner. rules may be nil, in which case regional
// augmentation is skipped entirely.
func NewScanner(rules RuleProvider, log logger.Logger, tp *telemetry.Provider) *Scanner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scanner{
		rules:          rules,
		triggerMatcher: ahocorasick.NewStringMatcher(triggerPhrases),
		logger:         log,
		telemetry:      tp,
	}
}

// Scan runs every detector over title and body in a fixed order. Each
// detector appends zero or one violation message. Region lookup failures
// are logged and reported via Degraded but never abort the scan.
func (s *Scanner) Scan(ctx context.Context, title, body, regionID string) *ScanResult {
	start := time.Now()
	text := title + " " + body

	var violations []string
	var fired []string

	if ssnPattern.MatchString(text) {
		violations = append(violations, ViolationGovernmentID)
		fired = append(fired, detectorGovernmentID)
	}

	if s.detectPaymentCard(text) {
		violations = append(violations, ViolationPaymentCard)
		fired = append(fired, detectorPaymentCard)
	}

	if n := countDistinct(emailPattern.FindAllString(text, -1), strings.ToLower); n > bulkEmailLimit {
		violations = append(violations, ViolationBulkEmails)
		fired = append(fired, detectorBulkEmail)
	}

	if n := countDistinct(phonePattern.FindAllString(text, -1), normalizePhone); n > bulkPhoneLimit {
		violations = append(violations, ViolationBulkPhones)
		fired = append(fired, detectorBulkPhone)
	}

	degraded := false
	if regionID != "" && s.rules != nil {
		regional, lookupErr := s.regionalViolation(ctx, text, regionID)
		if lookupErr != nil {
			degraded = true
			s.logger.Warn("compliance scan degraded to generic checks",
				logger.String("region_id", regionID),
				logger.Error(lookupErr),
			)
		} else if regional != "" {
			violations = append(violations, regional)
			fired = append(fired, detectorRegional)
		}
	}

	if s.telemetry != nil {
		s.telemetry.RecordComplianceScan(ctx, time.Since(start), fired, degraded)
	}

	return &ScanResult{
		Compliant:  len(violations) == 0,
		Violations: violations,
		Degraded:   degraded,
	}
}

// detectPaymentCard reports whether the text contains a digit run of card
// length that passes the Luhn check. The Luhn gate keeps invoice numbers
// and timestamps from firing this detector.
func (s *Scanner) detectPaymentCard(text string) bool {
	for _, m := range cardPattern.FindAllString(text, -1) {
		digits := digitsOnly.ReplaceAllString(m, "")
		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		if luhnValid(digits) {
			return true
		}
	}
	return false
}

// regionalViolation applies trigger-phrase checks when the region's rule
// is high-compliance and its law description names a data-protection law
// family. Returns the violation message or "".
func (s *Scanner) regionalViolation(ctx context.Context, text, regionID string) (string, error) {
	rule, err := s.rules.GetComplianceRule(ctx, regionID)
	if err != nil {
		return "", err
	}
	if rule == nil || rule.ComplianceLevel != domain.ComplianceHigh {
		return "", nil
	}

	law := strings.ToLower(rule.LawDescription)
	matchedFamily := false
	for _, family := range dataProtectionLawFamilies {
		if strings.Contains(law, family) {
			matchedFamily = true
			break
		}
	}
	if !matchedFamily {
		return "", nil
	}

	normalized := textnorm.Fold(text)
	if hits := s.triggerMatcher.Match([]byte(normalized)); len(hits) > 0 {
		return "Content may reference unredacted personal data restricted under " + rule.LawDescription, nil
	}
	return "", nil
}

// luhnValid runs the Luhn checksum over a digit string.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// countDistinct counts unique matches after applying the key function.
func countDistinct(matches []string, key func(string) string) int {
	if len(matches) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[key(m)] = struct{}{}
	}
	return len(seen)
}

func normalizePhone(s string) string {
	return digitsOnly.ReplaceAllString(s, "")
}
