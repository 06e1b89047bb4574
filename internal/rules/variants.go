package rules

import "github.com/digirakshak/kavach/internal/domain"

// languageVariantRules cover Hindi written in Latin script (Hinglish) and
// Devanagari. Weights mirror the English equivalents so a scam is scored
// the same regardless of the script it arrives in.
//
// Devanagari patterns avoid \b: RE2 word boundaries assume ASCII word
// characters and do not fire at Devanagari codepoints.
var languageVariantRules = []domain.Rule{
	// Credential harvesting
	r(domain.CategoryLanguageVariant, 100, "Hindi request to share OTP",
		`otp (share|bata(ye|o)|bhej(e|o)|dijiye|de do)`),
	r(domain.CategoryLanguageVariant, 100, "Hindi request to share PIN",
		`pin (share|bata(ye|o)|bhej(e|o)|dijiye|de do)`),
	r(domain.CategoryLanguageVariant, 100, "Hindi request to share password",
		`password (bata(ye|o)|bhej(e|o)|dijiye|de do)`),
	r(domain.CategoryLanguageVariant, 100, "Devanagari request for OTP or password",
		`ओटीपी (साझा|बताएं|बताओ|भेजें|भेजो)|पासवर्ड (बताएं|बताओ|भेजें)|पिन बताएं`),

	// Account threats
	r(domain.CategoryLanguageVariant, 85, "Hindi account-blocking threat",
		`(aapka|apka) (account|khata).*(band|block|suspend)|khata.*(band|block)`),
	r(domain.CategoryLanguageVariant, 85, "Devanagari account-blocking threat",
		`खाता.*(बंद|ब्लॉक)|अकाउंट.*(बंद|ब्लॉक)`),

	// Lottery and prize
	r(domain.CategoryLanguageVariant, 90, "Hindi congratulations opener",
		`badhai ho|mubarak ho`),
	r(domain.CategoryLanguageVariant, 95, "Hindi prize-winning claim",
		`inaam.*(jeet(a|e)|mila)|(jeet(a|e)).*(inaam|prize)`),
	r(domain.CategoryLanguageVariant, 100, "Hindi lottery-winning claim",
		`lottery.*(jeet(a|e)|lagi)|(crore|lakh).*(jeet(a|e)|inaam)`),
	r(domain.CategoryLanguageVariant, 100, "Devanagari lottery claim",
		`लॉटरी|इनाम जीता|करोड़.*(जीत|इनाम)`),

	// Money transfer
	r(domain.CategoryLanguageVariant, 85, "Hindi money-transfer request",
		`pais(a|e).*(bhej(e|o)|transfer|send)`),
	r(domain.CategoryLanguageVariant, 85, "Devanagari money-transfer request",
		`पैसे (भेजें|भेजो|ट्रांसफर)`),
	r(domain.CategoryLanguageVariant, 75, "Hindi fake refund bait",
		`pais(a|e).*(wapas|refund)|refund.*(wapas|milega)`),
	r(domain.CategoryLanguageVariant, 75, "Hindi money-doubling bait",
		`pais(a|e) double`),

	// KYC and verification
	r(domain.CategoryLanguageVariant, 75, "Hindi KYC-update pressure",
		`kyc (update )?(kar(e|o|ein)|karwa(ye|o))`),
	r(domain.CategoryLanguageVariant, 75, "Devanagari KYC pressure",
		`केवाईसी`),
	r(domain.CategoryLanguageVariant, 60, "Hindi verification instruction",
		`verify (kar(e|o|ein)|kariye)`),

	// Link pressure
	r(domain.CategoryLanguageVariant, 75, "Hindi link-clicking instruction",
		`link (par|pe) click|link khol(o|e|iye)|click (kar(e|o|ein)|kariye)`),

	// Employment bait
	r(domain.CategoryLanguageVariant, 70, "Hindi work-from-home bait",
		`ghar baithe.*(kama(ye|o)|earn|paise)|rozana.*(kama(ye|o)|income)`),

	// Intimidation
	r(domain.CategoryLanguageVariant, 80, "Hindi arrest or legal threat",
		`giraftar|kanooni (karyawahi|karvahi)|police (aayegi|case hoga)`),
	r(domain.CategoryLanguageVariant, 80, "Devanagari arrest threat",
		`गिरफ्तार|पुलिस केस|कानूनी कार्रवाई`),

	// Urgency
	r(domain.CategoryLanguageVariant, 30, "Hindi urgency wording",
		`turant|jaldi kar(o|e|ein)|abhi (hi|karo)|foran`),
	r(domain.CategoryLanguageVariant, 30, "Devanagari urgency wording",
		`तुरंत|जल्दी करें|अभी करें`),
	r(domain.CategoryLanguageVariant, 35, "Hindi time-pressure wording",
		`aaj hi|\d+ ghante (ke andar|mein)`),
}
