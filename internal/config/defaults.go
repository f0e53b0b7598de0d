package config

import "time"

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "newsintel.db"},
		Logging:  LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			Interval:        Duration(15 * time.Minute),
			RetrainInterval: Duration(24 * time.Hour),
		},
		Collector: CollectorConfig{
			MaxConcurrency:        4,
			SourceTimeout:         Duration(10 * time.Second),
			MaxArticlesPerSource:  50,
			DegradedAfterFailures: 3,
			BackoffFactor:         2,
			MaxBackoffInterval:    Duration(4 * time.Hour),
		},
		Classifier: ClassifierConfig{
			HoldoutFraction:        0.2,
			MinExamplesPerCategory: 5,
			Smoothing:              0.1,
		},
		Signals: SignalConfig{
			MinSeverity:   2,
			DecayHalfLife: Duration(24 * time.Hour),
			RiskLexicon: map[string]float64{
				"crisis": 5, "emergency": 5, "collapse": 5, "disaster": 5,
				"shortage": 5, "default": 5, "bankrupt": 5, "breakdown": 5,
				"protest": 3, "strike": 3, "disruption": 3, "delay": 3,
				"warning": 3, "threat": 3, "decline": 3, "suspend": 3,
				"halts": 3, "drop": 3,
				"issue": 1, "problem": 1, "challenge": 1, "slow": 1,
				"weak": 1, "uncertain": 1,
			},
			OpportunityLexicon: map[string]float64{
				"launch": 3, "expand": 3, "investment": 3, "partnership": 3,
				"agreement": 3, "record": 3, "innovation": 3,
				"growth": 2, "increase": 2, "boost": 2, "improve": 2,
				"deal": 2, "export": 2, "success": 2,
				"open": 1, "rise": 1, "development": 1, "collaboration": 1,
			},
		},
		Sentiment: SentimentConfig{
			Positive: map[string]float64{
				"surge": 0.7, "record": 0.6, "rally": 0.6, "boost": 0.5,
				"growth": 0.4, "profit": 0.4, "recovery": 0.5, "expand": 0.4,
				"strong": 0.4, "success": 0.5, "improve": 0.4, "positive": 0.4,
				"upgrade": 0.6, "gain": 0.4,
			},
			Negative: map[string]float64{
				"crash": 0.8, "crisis": 0.7, "collapse": 0.7, "plunge": 0.7,
				"decline": 0.5, "loss": 0.4, "weak": 0.4, "warning": 0.5,
				"default": 0.7, "fraud": 0.8, "shortage": 0.6, "strike": 0.5,
				"downgrade": 0.6, "negative": 0.4, "fall": 0.4,
			},
		},
		Categories: defaultTaxonomy(),
		Sources: []SourceConfig{
			{ID: "economynext", Name: "Economy Next", Endpoint: "https://economynext.com/feed", Enabled: true},
			{ID: "businesstoday", Name: "Business Today", Endpoint: "https://businesstoday.lk/feed", Enabled: true},
			{ID: "lankabusinessonline", Name: "Lanka Business Online", Endpoint: "https://www.lankabusinessonline.com/feed", Enabled: true},
			{ID: "ft", Name: "Financial Times LK", Endpoint: "https://www.ft.lk/rss", Enabled: true},
			{ID: "adaderana", Name: "Ada Derana", Endpoint: "http://www.adaderana.lk/rss.php", Enabled: false},
			{ID: "dailymirror", Name: "Daily Mirror", Endpoint: "https://www.dailymirror.lk/rss", Enabled: false},
		},
	}
}

// defaultTaxonomy mirrors the business-relevant category seeds the platform
// started with. Keyword weights bias the bootstrap corpus toward the stronger
// indicators.
func defaultTaxonomy() CategoryTaxonomy {
	return CategoryTaxonomy{
		"business": {
			"company": 2, "corporate": 2, "merger": 2, "acquisition": 2,
			"profit": 2, "revenue": 2, "startup": 2, "shareholders": 2,
			"dividend": 2, "enterprise": 1.5, "industry": 1.5, "retail": 1.5,
			"manufacturing": 1.5, "contract": 1,
		},
		"finance": {
			"bank": 2, "banking": 2, "loan": 2, "insurance": 2, "stock": 2,
			"shares": 2, "bond": 2, "forex": 2, "equity": 2, "treasury": 2,
			"central bank": 2.5, "credit": 1.5, "liquidity": 1.5, "yield": 1.5,
		},
		"economic": {
			"economy": 2.5, "inflation": 2.5, "gdp": 2.5, "imf": 2.5,
			"recession": 2.5, "fdi": 2.5, "export": 2, "import": 2,
			"investment": 2, "budget": 2, "fiscal": 2, "currency": 2,
			"tariff": 2, "trade": 1.5, "growth": 1.5, "tax": 1.5,
		},
		"infrastructure": {
			"infrastructure": 2.5, "highway": 2, "port": 2, "airport": 2,
			"railway": 2, "metro": 2, "expressway": 2, "real estate": 2,
			"construction": 1.5, "transport": 1.5, "logistics": 1.5,
			"housing": 1.5, "bridge": 1.5,
		},
		"energy": {
			"petroleum": 2.5, "power cut": 2.5, "blackout": 2.5, "lng": 2.5,
			"energy": 2, "electricity": 2, "fuel": 2, "renewable": 2,
			"solar": 2, "coal": 2, "hydropower": 2, "oil": 2, "refinery": 2,
			"grid": 1.5,
		},
		"agriculture": {
			"agriculture": 2.5, "farming": 2, "crop": 2, "harvest": 2,
			"fertilizer": 2, "paddy": 2, "tea": 2, "rubber": 2, "coconut": 2,
			"plantation": 2, "fisheries": 2, "livestock": 2, "dairy": 1.5,
		},
		"technology": {
			"ai": 2.5, "fintech": 2.5, "blockchain": 2.5, "5g": 2.5,
			"technology": 2, "software": 2, "cyber": 2, "automation": 2,
			"data center": 2, "e-commerce": 2, "digital": 1.5, "cloud": 1.5,
			"innovation": 1.5,
		},
		"tourism": {
			"tourism": 2.5, "tourist": 2, "hotel": 2, "resort": 2,
			"hospitality": 2, "airline": 2, "arrivals": 2, "travel": 1.5,
			"destination": 1.5, "booking": 1.5,
		},
	}
}
