package detector

import "regexp"

// Lists holds the three detection layers. The defaults cover the notification
// services we currently subscribe to; a custom Lists value can be injected for
// other deployments.
type Lists struct {
	Domains         map[string]struct{}
	SenderPatterns  []*regexp.Regexp
	SubjectKeywords []string
}

var defaultDomains = []string{
	// US Federal
	"sam.gov",
	"grants.gov",
	"beta.sam.gov",
	"fpds.gov",
	"usaspending.gov",
	// State / Local
	"bidnet.com",
	"bidnetdirect.com",
	"publicpurchase.com",
	"periscope.com",
	"bonfirehub.com",
	"ionwave.net",
	"negometrix.com",
	// Commercial Platforms
	"rfpmart.com",
	"tendersinfo.com",
	"tendersonline.in",
	"procurenow.com",
	"govwin.com",
	"deltek.com",
	"govspend.com",
	"rfpdb.com",
	"findrfp.com",
	"bidsync.com",
	"demandstar.com",
	"onvia.com",
	"ebidboard.com",
	// UK / International
	"find-tender.service.gov.uk",
	"ted.europa.eu",
	"contracts.gov.au",
	"merx.com",
}

var defaultSenderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rfp@`),
	regexp.MustCompile(`(?i)rfq@`),
	regexp.MustCompile(`(?i)bid@`),
	regexp.MustCompile(`(?i)bids@`),
	regexp.MustCompile(`(?i)tender@`),
	regexp.MustCompile(`(?i)procurement@`),
	regexp.MustCompile(`(?i)solicitation@`),
	regexp.MustCompile(`(?i)noreply.*sam\.gov`),
	regexp.MustCompile(`(?i)notifications?@grants\.gov`),
	regexp.MustCompile(`(?i)alerts?@bidnet`),
}

var defaultSubjectKeywords = []string{
	"request for proposal",
	"request for quotation",
	"invitation to bid",
	"solicitation",
	"rfp#",
	"rfq#",
	"itb#",
	"bid opportunity",
	"procurement notice",
	"contract award",
	"pre-bid",
	"pre-proposal",
	"sources sought",
	"combined synopsis",
	"tender notice",
	"tender alert",
	"new opportunity",
	"bid alert",
}

func DefaultLists() *Lists {
	domains := make(map[string]struct{}, len(defaultDomains))
	for _, d := range defaultDomains {
		domains[d] = struct{}{}
	}
	return &Lists{
		Domains:         domains,
		SenderPatterns:  defaultSenderPatterns,
		SubjectKeywords: defaultSubjectKeywords,
	}
}
