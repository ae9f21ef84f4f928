package enum

type ParsingMethod string

const (
	ParsingMethodPrimary    ParsingMethod = "primary"
	ParsingMethodStructural ParsingMethod = "structural"
)

func (t ParsingMethod) String() string {
	return string(t)
}

// MatchChannel identifies which detection layer produced a tender match.
type MatchChannel string

const (
	MatchChannelDomain         MatchChannel = "domain"
	MatchChannelEmailPattern   MatchChannel = "emailPattern"
	MatchChannelSubjectKeyword MatchChannel = "subjectKeyword"
	MatchChannelScore          MatchChannel = "score"
)

func (t MatchChannel) String() string {
	return string(t)
}

type ClassificationTier string

const (
	TierHigh       ClassificationTier = "high"
	TierMedium     ClassificationTier = "medium"
	TierLow        ClassificationTier = "low"
	TierIrrelevant ClassificationTier = "irrelevant"
)

func (t ClassificationTier) String() string {
	return string(t)
}

// TierForScore maps a 0-100 relevance score onto its classification tier.
// Boundaries are fixed: [80,100] high, [50,79] medium, [20,49] low, [0,19] irrelevant.
func TierForScore(score int) ClassificationTier {
	switch {
	case score >= 80:
		return TierHigh
	case score >= 50:
		return TierMedium
	case score >= 20:
		return TierLow
	default:
		return TierIrrelevant
	}
}

type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusSkipped LogStatus = "skipped"
	LogStatusError   LogStatus = "error"
)

func (t LogStatus) String() string {
	return string(t)
}
