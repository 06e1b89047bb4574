package rules

import (
	"regexp"

	"github.com/digirakshak/kavach/internal/domain"
)

// r compiles a case-insensitive content rule. Patterns are written for
// RE2, so no lookaround or backreferences anywhere in the catalogue.
func r(cat domain.Category, weight int, reason, pattern string) domain.Rule {
	return domain.Rule{
		Pattern:  regexp.MustCompile(`(?i)` + pattern),
		Weight:   weight,
		Reason:   reason,
		Category: cat,
	}
}

// criticalRules carry weights 80-100. A single match usually pushes the
// message over the scam threshold on its own.
var criticalRules = []domain.Rule{
	// Phishing links
	r(domain.CategoryCritical, 90, "Shortened URL often used in phishing",
		`bit\.ly|tinyurl|goo\.gl|ow\.ly|cutt\.ly|t\.co/|tiny\.cc|short\.link|rb\.gy`),
	r(domain.CategoryCritical, 80, "Pressure to open a link immediately",
		`click here|tap here|click below|click this link|open (the |this )?link (now|immediately)`),

	// Credential harvesting
	r(domain.CategoryCritical, 100, "Asks you to share OTP, PIN or password",
		`share (your |the )?(otp|pin|cvv|mpin|password|atm pin)`),
	r(domain.CategoryCritical, 100, "Asks you to send OTP, PIN or password",
		`send (your |the |me )?(otp|pin|cvv|mpin|password)`),
	r(domain.CategoryCritical, 95, "Asks you to enter credentials",
		`enter (your |the )?(otp|pin|cvv|mpin|password)`),
	r(domain.CategoryCritical, 95, "Asks you to provide credentials",
		`provide (your |the )?(otp|pin|cvv|mpin|password)`),
	r(domain.CategoryCritical, 100, "Directly asks for your OTP or PIN",
		`what is (your |the )?(otp|pin|cvv|password)|tell (me|us) (your |the )?(otp|pin|cvv)`),
	r(domain.CategoryCritical, 90, "Direct request to transfer money",
		`send money|transfer money|pay (now|immediately)|transfer (rs|inr|amount)`),

	// Refund and reversal baits that pair a payout with a credential ask
	r(domain.CategoryCritical, 95, "Fake refund that asks for OTP or PIN",
		`(otp|pin|code).*refund|refund.*(otp|pin|cvv|code)`),
	r(domain.CategoryCritical, 95, "Fake payment reversal that asks for OTP",
		`revers(e|al).*(transaction|payment|amount).*(otp|pin|code)`),
	r(domain.CategoryCritical, 90, "Fake cancellation that asks for OTP",
		`cancel.*(order|transaction|payment).*(otp|pin|code)`),
	r(domain.CategoryCritical, 95, "Wrong-transaction story used to extract OTP",
		`wrong(ly)? (transaction|transfer|credited).*(otp|pin|code|return)`),

	// Lottery and prize scams
	r(domain.CategoryCritical, 100, "Lottery or prize-winning claim",
		`you (have )?won|congratulations.*(prize|reward|lottery|bumper)`),
	r(domain.CategoryCritical, 100, "Fake winner selection notice",
		`selected as (a |the )?(winner|lucky (customer|winner)|finalist)`),
	r(domain.CategoryCritical, 100, "Fake KBC lottery",
		`(kbc|kaun banega crorepati).*(winner|selected|prize|lottery|lucky)`),
	r(domain.CategoryCritical, 100, "Implausibly large prize amount",
		`(rs\.?|inr|\x{20B9})\s*\d+\s*(lakh|lac|crore).*(won|winner|prize|lottery|draw)`),
	r(domain.CategoryCritical, 100, "Lucky-draw winning claim",
		`lucky draw`),
	r(domain.CategoryCritical, 100, "Jackpot or mega-prize claim",
		`jackpot|mega prize|bumper prize|bumper offer`),

	// Government identity scams
	r(domain.CategoryCritical, 90, "Fake Aadhaar update or blocking notice",
		`aadhaa?r.*(update|verify|block|suspend|expire|deactivat)`),
	r(domain.CategoryCritical, 90, "Fake PAN card notice",
		`pan ?(card)?.*(update|verify|block|invalid|expire)`),
	r(domain.CategoryCritical, 85, "Fake income-tax communication",
		`income tax.*(refund|notice|verify|penalty|assessment)`),
	r(domain.CategoryCritical, 85, "Fake voter-ID notice",
		`voter (id|card).*(update|verify|delete|cancel)`),
	r(domain.CategoryCritical, 80, "Fake passport notice",
		`passport.*(expire|renew|verify|cancel)`),
	r(domain.CategoryCritical, 80, "Fake driving-licence notice",
		`driving licen[cs]e.*(suspend|expire|renew)`),
	r(domain.CategoryCritical, 85, "Fake ration-card notice",
		`ration card.*(update|verify|cancel|block)`),
	r(domain.CategoryCritical, 80, "Fake GST notice",
		`gst.*(registration|refund|notice|penalty)`),

	// Fabricated security alerts
	r(domain.CategoryCritical, 85, "Fake login-attempt alert",
		`someone.*(login|logged|tried|attempt).*(account|password)`),
	r(domain.CategoryCritical, 80, "Fake suspicious-activity alert",
		`suspicious activity.*(account|login|transaction|card)`),
	r(domain.CategoryCritical, 80, "Fake unauthorised-access alert",
		`unauthori[sz]ed.*(access|login|transaction|attempt)`),
	r(domain.CategoryCritical, 85, "Fake data-breach alert",
		`security breach|data breach|account (is )?compromised`),

	// Remote access and malware
	r(domain.CategoryCritical, 95, "Mentions remote-access tools used by fraudsters",
		`anydesk|team ?viewer|quick ?support|screen shar(e|ing)|remote access`),
	r(domain.CategoryCritical, 90, "Pushes an app install for support or refund",
		`(install|download).*(app|apk|software).*(help|refund|support|verify)`),
}

// highRiskRules carry weights 60-79: strong scam signals that usually
// need one or two supporting matches to cross the threshold.
var highRiskRules = []domain.Rule{
	// Banking and KYC pressure
	r(domain.CategoryHigh, 75, "Threat that your account will be blocked",
		`account.*(is |will be |has been )?(blocked?|suspend|deactivat|closed|frozen)`),
	r(domain.CategoryHigh, 75, "KYC expiry or update pressure",
		`kyc.*(expire|expir|update|pending|complete|verify|suspend)|re-?kyc`),
	r(domain.CategoryHigh, 70, "Credit-card blocking or limit bait",
		`credit card.*(block|expire|limit|upgrade)`),
	r(domain.CategoryHigh, 70, "Debit-card blocking or update bait",
		`debit card.*(block|expire|update|deactivat)`),
	r(domain.CategoryHigh, 75, "Net-banking suspension threat",
		`net ?banking.*(suspend|block|disable|deactivat)`),
	r(domain.CategoryHigh, 75, "Fake UPI app verification",
		`(paytm|phonepe|google ?pay|gpay|bhim).*(kyc|update|verify|suspend|block)`),
	r(domain.CategoryHigh, 75, "UPI PIN or security bait",
		`upi.*(pin|password|security|block)`),
	r(domain.CategoryHigh, 70, "Wallet blocking or verification bait",
		`wallet.*(block|suspend|verify|expire)`),
	r(domain.CategoryHigh, 75, "SIM swap or deactivation threat",
		`sim.*(swap|block|deactivat|expire|upgrade)`),

	// Job and income scams
	r(domain.CategoryHigh, 70, "Work-from-home income bait",
		`work from home.*(earn|income|salary|rs|\x{20B9})`),
	r(domain.CategoryHigh, 70, "Part-time job income bait",
		`part ?time.*(job|earn|income|work)`),
	r(domain.CategoryHigh, 70, "Unrealistic daily-earning promise",
		`earn.*(daily|per day|per week|from home)`),
	r(domain.CategoryHigh, 75, "Upfront fee for a job offer",
		`(registration|training|joining) fee.*(job|position|employment|selected)`),
	r(domain.CategoryHigh, 65, "Data-entry job bait",
		`data entry.*(job|work|earn)`),

	// Investment scams
	r(domain.CategoryHigh, 75, "Guaranteed or doubled investment returns",
		`invest.*(guaranteed|double|triple|assured)`),
	r(domain.CategoryHigh, 70, "Guaranteed trading profit",
		`trading.*(profit|guaranteed|tips)`),
	r(domain.CategoryHigh, 70, "Crypto profit bait",
		`(crypto|bitcoin|btc).*(profit|guaranteed|invest|double)`),
	r(domain.CategoryHigh, 75, "Forex or binary-options bait",
		`forex|binary option`),
	r(domain.CategoryHigh, 65, "Sure-shot stock tips",
		`stock (tip|market).*(sure|guaranteed|profit|target)`),

	// Delivery and customs scams
	r(domain.CategoryHigh, 65, "Fake pending-package notice",
		`package.*(pending|held|stuck|customs)`),
	r(domain.CategoryHigh, 65, "Fake courier payment demand",
		`courier.*(pending|customs|pay|fee)`),
	r(domain.CategoryHigh, 70, "Fake customs duty demand",
		`customs (duty|charge|fee|clearance)`),
	r(domain.CategoryHigh, 65, "Fake undeliverable-parcel notice",
		`parcel.*(undeliver|return|charge|held)`),

	// Romance and emergency scams
	r(domain.CategoryHigh, 60, "Romance-scam opening line",
		`lonely|beautiful (girl|lady|woman)|handsome (man|guy)`),
	r(domain.CategoryHigh, 60, "Dating-profile bait",
		`dating (site|app|profile)|friendship club`),
	r(domain.CategoryHigh, 65, "Fake medical-emergency money request",
		`(hospital|medical emergency|accident).*(bill|payment|money|send|urgent)`),

	// Insurance and loan scams
	r(domain.CategoryHigh, 65, "Fake insurance claim or bonus",
		`insurance.*(claim|refund|bonus|maturity)`),
	r(domain.CategoryHigh, 65, "Fake policy maturity or bonus",
		`policy.*(matur|bonus|claim|lapse)`),
	r(domain.CategoryHigh, 65, "Fake LIC bonus or maturity",
		`lic.*(bonus|maturity|claim|policy)`),
	r(domain.CategoryHigh, 75, "Loan that needs an upfront processing fee",
		`(processing|file) (fee|charge).*loan|loan.*(processing|file) (fee|charge)`),

	// Misc social engineering
	r(domain.CategoryHigh, 65, "Urgent donation request",
		`donation.*(urgent|emergency|help|needy)`),
	r(domain.CategoryHigh, 65, "Unsolicited customer-care callback number",
		`customer (care|support).*(number|call|contact)`),
	r(domain.CategoryHigh, 78, "Arrest or legal-action threat",
		`arrest|police (case|complaint)|legal action.*(pay|fine|penalty)|fir (against|registered)`),
}

// mediumRiskRules carry weights 40-59: individually weak, meaningful in
// combination.
var mediumRiskRules = []domain.Rule{
	r(domain.CategoryMedium, 45, "Contains an unverified link",
		`https?://|www\.`),
	r(domain.CategoryMedium, 50, "Mentions OTP, PIN or CVV",
		`\botp\b|\bpin\b|\bcvv\b|\bmpin\b`),
	r(domain.CategoryMedium, 50, "Mentions a password",
		`\bpassword\b|\bpasscode\b`),
	r(domain.CategoryMedium, 45, "Asks about account details",
		`account.*(detail|number|info)`),
	r(domain.CategoryMedium, 45, "Asks about card details",
		`card.*(detail|number|expiry)`),
	r(domain.CategoryMedium, 45, "Asks you to verify yourself",
		`verify (your )?(account|detail|details|identity|information)`),
	r(domain.CategoryMedium, 45, "Asks you to update your details",
		`update (your )?(account|detail|details|information|profile)`),
	r(domain.CategoryMedium, 45, "Asks you to confirm your identity",
		`confirm (your )?(account|detail|details|identity)`),
	r(domain.CategoryMedium, 40, "Artificial 24/48-hour deadline",
		`within (24|48) hours|next (24|48) hours|in 24 hrs`),
	r(domain.CategoryMedium, 45, "Last-chance pressure",
		`last (chance|warning|reminder|day)|final (notice|warning|reminder)`),
	r(domain.CategoryMedium, 45, "Expiry pressure",
		`expir(es|ing|y)? (today|soon|tonight|shortly)`),
	r(domain.CategoryMedium, 40, "Limited-time pressure",
		`act now|hurry|limited (time|period|offer)`),
	r(domain.CategoryMedium, 45, "Cashback bait",
		`cashback`),
	r(domain.CategoryMedium, 50, "Prompts you to claim a reward",
		`claim (your |the )?(prize|reward|gift|cashback|amount)`),
	r(domain.CategoryMedium, 50, "Free gift or recharge bait",
		`free (gift|prize|recharge|voucher|iphone|mobile)`),
	r(domain.CategoryMedium, 55, "Unsolicited pre-approved loan offer",
		`loan.*(approved|sanctioned|pre-?approved)|instant loan`),
}

// lowRiskRules carry weights 10-39: background signals that only matter
// in aggregate.
var lowRiskRules = []domain.Rule{
	r(domain.CategoryLow, 25, "Urgency wording",
		`\burgent(ly)?\b|\bimmediately\b`),
	r(domain.CategoryLow, 25, "Pressure to act right away",
		`\basap\b|right (now|away)`),
	r(domain.CategoryLow, 30, "Banking context",
		`\bbank\b|\bbanking\b`),
	r(domain.CategoryLow, 30, "Account mention",
		`\baccount\b|\ba/c\b`),
	r(domain.CategoryLow, 25, "Transaction mention",
		`\btransaction\b|\btxn\b`),
	r(domain.CategoryLow, 25, "Payment mention",
		`\bpayment\b|\bpaid\b`),
	r(domain.CategoryLow, 30, "Callback request",
		`call (us|now|back|this number)`),
	r(domain.CategoryLow, 30, "Reply prompt",
		`reply (yes|no|y|1|stop)\b`),
	r(domain.CategoryLow, 25, "Winner vocabulary",
		`\bwinner\b|\bwinning\b`),
	r(domain.CategoryLow, 20, "Offer vocabulary",
		`\boffer\b|\bdeal\b|\bdiscount\b`),
}
