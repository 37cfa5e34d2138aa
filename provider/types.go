package provider

// Metrics is the flat record of third-party SEO signals for a page.
// Fields are nil when the provider returned no data for that facet.
type Metrics struct {
	DomainRank      *int      `json:"domainRank,omitempty" yaml:"domainRank,omitempty"`
	OrganicTraffic  *float64  `json:"organicTraffic,omitempty" yaml:"organicTraffic,omitempty"`
	OrganicKeywords *int      `json:"organicKeywords,omitempty" yaml:"organicKeywords,omitempty"`
	OnPageScore     *float64  `json:"onPageScore,omitempty" yaml:"onPageScore,omitempty"`
	LoadTimeMs      *float64  `json:"loadTime,omitempty" yaml:"loadTime,omitempty"`
	TopKeywords     []Keyword `json:"topKeywords,omitempty" yaml:"topKeywords,omitempty"`
}

// Keyword is a ranked keyword for the analyzed domain.
type Keyword struct {
	Keyword      string `json:"keyword" yaml:"keyword"`
	Position     int    `json:"position" yaml:"position"`
	SearchVolume int    `json:"searchVolume" yaml:"searchVolume"`
}

// Result is what the adapter hands back to the analyzer. Available is false
// only when the provider is not configured or failed outright; a configured
// provider with no data still reports Available with empty Metrics.
type Result struct {
	Available bool     `json:"available"`
	Error     string   `json:"error,omitempty"`
	Metrics   *Metrics `json:"metrics,omitempty"`
}

// Empty reports whether no facet returned data.
func (m *Metrics) Empty() bool {
	if m == nil {
		return true
	}
	return m.DomainRank == nil && m.OrganicTraffic == nil && m.OrganicKeywords == nil &&
		m.OnPageScore == nil && m.LoadTimeMs == nil && len(m.TopKeywords) == 0
}

// wire shapes

type apiResponse[T any] struct {
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Tasks         []apiTask[T] `json:"tasks"`
}

type apiTask[T any] struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Result        []T    `json:"result"`
}

type rankOverviewResult struct {
	Items []struct {
		Rank    *int `json:"rank"`
		Metrics struct {
			Organic *struct {
				ETV   *float64 `json:"etv"`
				Count *int     `json:"count"`
			} `json:"organic"`
		} `json:"metrics"`
	} `json:"items"`
}

type instantPagesResult struct {
	Items []struct {
		OnPageScore *float64 `json:"onpage_score"`
		PageTiming  *struct {
			DurationTime *float64 `json:"duration_time"`
		} `json:"page_timing"`
	} `json:"items"`
}

type rankedKeywordsResult struct {
	Items []struct {
		KeywordData struct {
			Keyword     string `json:"keyword"`
			KeywordInfo struct {
				SearchVolume *int `json:"search_volume"`
			} `json:"keyword_info"`
		} `json:"keyword_data"`
		RankedSERPElement struct {
			SERPItem struct {
				RankGroup int `json:"rank_group"`
			} `json:"serp_item"`
		} `json:"ranked_serp_element"`
	} `json:"items"`
}
