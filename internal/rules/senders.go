package rules

import (
	"regexp"

	"github.com/digirakshak/kavach/internal/domain"
)

// trustedSenderIDs are DLT-registered header codes of banks, wallets,
// telecom operators, government services and large consumer brands.
// Operators prepend a two-letter route prefix ("VM-HDFCBK"), so matching
// accepts an optional prefix around the exact code.
var trustedSenderIDs = []string{
	// Banks
	"SBIINB", "SBIPSG", "SBICRD",
	"HDFCBK", "HDFCBA",
	"ICICIB", "ICICBA",
	"AXISBK", "AXISCD",
	"KOTAKB", "KOTAKM",
	"PNBSMS", "PNBBKG",
	"BOIIND", "INDUSB", "YESBNK", "IDFCFB", "RBLBNK",
	"CANBNK", "UNIONB", "IOBNET", "CENTBK",

	// Payments and wallets
	"PAYTMB", "PYTMRC",
	"PHONPE", "PHPERC",
	"GPAYIN", "BHIMPY", "NPCIUP",

	// Commerce
	"AMZIND", "AMAZON",
	"FLPKRT", "FKSHOP",
	"MYNTRA", "AJIORC", "SNAPDL", "BIGBSK", "MEESHO",

	// Telecom
	"AIRTEL", "MYAIRT",
	"VODAIN", "VICARE",
	"JIOINF", "MYJIO",
	"BSNLMO",

	// Food and travel
	"SWIGGY", "ZOMATO", "DOMINO",
	"IRCTCI", "MKMYTP", "GOIBIB", "YATRAA",
	"OLACAB", "UBERIN",

	// Government and utilities
	"GOVTIN", "UIDAII", "EPFOHO", "ECISVP", "NICSMS",
	"BESCOM", "MSEDCL", "TNEBLT",
	"TATASK", "DISHTV",
}

// trustedSenderPatterns is the compiled allow-list: optional DLT route
// prefix and suffix, case-insensitive, anchored on both ends.
var trustedSenderPatterns = compileTrusted(trustedSenderIDs)

func compileTrusted(ids []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(ids))
	for _, id := range ids {
		patterns = append(patterns, regexp.MustCompile(`(?i)^([a-z]{2}-)?`+id+`(-[a-z])?$`))
	}
	return patterns
}

// sr compiles a case-insensitive sender rule.
func sr(weight int, reason, pattern string) domain.SenderRule {
	return domain.SenderRule{
		Pattern: regexp.MustCompile(`(?i)` + pattern),
		Weight:  weight,
		Reason:  reason,
	}
}

// suspiciousSenderRules are evaluated only for senders that fail the
// allow-list. Declaration order is the reporting order.
var suspiciousSenderRules = []domain.SenderRule{
	sr(45, "Sent from a personal mobile number, not a registered business",
		`^\+?[0-9]{10,15}$`),
	sr(40, "Sent from an unverified short code",
		`^[0-9]{4,6}$`),
	sr(90, "Sender name impersonates the KBC lottery",
		`kbc|crorepati`),
	sr(85, "Prize-themed sender name",
		`prize|reward|winner|lottery|lucky|gift`),
	sr(70, "Sender name impersonates a government service",
		`income.?tax|it-?dept|aadhaar|aadhar|uidai|epfo|govt`),
	sr(55, "Loan or credit themed sender name",
		`loan|credit|finance`),
	sr(55, "Recruitment-themed sender name",
		`job|hire|vacancy|recruit`),
	sr(35, "Sender ID is not in the verified registry",
		`^[a-z]{2}-[a-z0-9]{4,9}$`),
}

// transactionalKeywords mark genuine bank notifications (balance alerts,
// debit/credit confirmations). Checked only for trusted senders, where a
// hit replaces additive scoring with a flat dampening of the total.
var transactionalKeywords = []string{
	"credited",
	"debited",
	"withdrawn",
	"deposited",
	"balance",
	"avl bal",
	"available bal",
	"a/c no",
	"txn",
	"transaction id",
	"ref no",
	"reference number",
	"upi ref",
	"imps",
	"neft",
	"rtgs",
	"emi due",
	"statement",
	"cheque",
	"autopay",
	"standing instruction",
	"delivered",
	"dispatched",
	"out for delivery",
	"order confirmed",
	"booking confirmed",
	"recharge successful",
	"bill generated",
	"due date",
}
