package config

var defaultMCFTerms = []string{
	"aviation", "air transport", "project manager", "data analyst",
	"airport", "airline", "operations manager",
}

var defaultIndeedTerms = []string{
	"aviation operations",
	"project manager aviation",
	"data analyst aviation",
	"airport operations manager",
}

var defaultLinkedInTerms = []string{
	"aviation operations manager",
	"project manager aviation Singapore",
	"data analyst airline Singapore",
	"air transport management Singapore",
}

func defaultPortals() []PortalConfig {
	return []PortalConfig{
		{Name: "Singapore Airlines", Company: "Singapore Airlines", URL: "https://careers.singaporeair.com/go/All-Jobs/517600/"},
		{Name: "Changi Airport Group", Company: "Changi Airport Group", URL: "https://www.changiairport.com/en/our-story/careers.html"},
		{Name: "SATS Ltd", Company: "SATS Ltd", URL: "https://www.sats.com.sg/careers/job-opportunities"},
		{Name: "ST Engineering", Company: "ST Engineering", URL: "https://careers.stengg.com/en/search/#q=aviation&t=Jobs"},
		{Name: "Civil Aviation Authority of Singapore", Company: "CAAS", URL: "https://www.caas.gov.sg/who-we-are/careers/current-openings"},
	}
}
