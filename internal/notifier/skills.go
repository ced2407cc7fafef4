package notifier

import (
	"slices"
	"strings"
)

const maxSkillsPerJob = 5

// degreeSkills maps title keywords to Air Transport Management degree
// skills that carry over to the role.
var degreeSkills = []struct {
	keyword string
	skills  []string
}{
	{"aviation", []string{"Air Transport Economics", "Aviation Safety & Security", "Airport Planning & Management", "Airline Strategy", "ICAO/IATA Regulations"}},
	{"airport", []string{"Airport Operations", "Airport Planning & Management", "Passenger Experience", "Ground Handling", "Security Compliance"}},
	{"airline", []string{"Airline Strategy", "Revenue Management", "Network Planning", "Airline Economics", "Fleet Planning"}},
	{"flight", []string{"Flight Operations Principles", "ICAO/IATA Standards", "Airspace Management", "Operational Scheduling", "Aviation Safety & Security"}},
	{"ground", []string{"Ground Handling Operations", "Turnaround Coordination", "Airport Safety Procedures", "Resource Allocation", "Service Level Management"}},
	{"ramp", []string{"Ramp Operations", "Turnaround Coordination", "Ground Handling", "Aviation Safety Procedures", "Aircraft Servicing Protocols"}},
	{"baggage", []string{"Baggage Handling Systems", "Airport Operations", "Ground Handling", "Service Recovery", "Passenger Experience"}},
	{"air traffic", []string{"Airspace Management", "Air Traffic Flow", "ICAO Procedures", "Aviation Safety & Security", "Air Transport Economics"}},
	{"customer service", []string{"Passenger Experience Management", "Service Excellence", "Complaint Handling", "Airport Operations", "Cross-Cultural Communication"}},
	{"passenger", []string{"Passenger Experience Management", "Airport Terminal Operations", "Service Delivery", "Check-in & Boarding Procedures", "Customer Relations"}},
	{"project", []string{"Project Management", "Stakeholder Management", "Operations Research", "Strategic Planning", "Risk Management"}},
	{"data", []string{"Data Analysis", "Aviation Statistics", "Demand Forecasting", "Traffic Flow Analysis", "Operations Research"}},
	{"business analyst", []string{"Business Analysis", "Process Mapping & Improvement", "Data Analysis", "Stakeholder Management", "Aviation Market Research"}},
	{"junior business", []string{"Business Analysis", "Process Mapping & Improvement", "Data Analysis", "Stakeholder Management", "Report Writing"}},
	{"operations", []string{"Operations Management", "Process Optimisation", "Resource Planning", "Service Delivery", "KPI Monitoring"}},
	{"logistics", []string{"Supply Chain Fundamentals", "Cargo Operations", "Air Freight Management", "Transport Economics", "Logistics Planning"}},
	{"cargo", []string{"Air Cargo Management", "Freight Operations", "Dangerous Goods Regulations", "Cargo Revenue Management", "IATA Cargo Standards"}},
	{"safety", []string{"Aviation Safety Management Systems (SMS)", "Risk Assessment", "ICAO Safety Standards", "Safety Auditing", "Incident Investigation"}},
	{"analyst", []string{"Data Analysis", "Market Research", "Business Intelligence", "Statistical Analysis", "Report Writing"}},
	{"manager", []string{"Leadership & Team Management", "Strategic Planning", "Budget Management", "Stakeholder Engagement", "Change Management"}},
	{"coordinator", []string{"Coordination & Scheduling", "Stakeholder Communication", "Project Support", "Operations Planning", "Documentation & Reporting"}},
	{"admin", []string{"Administrative Support", "Documentation & Records Management", "Scheduling & Coordination", "Office Operations", "Report Writing"}},
	{"check-in", []string{"Passenger Experience Management", "Check-in & Boarding Procedures", "Airport Customer Service", "IATA Ticketing Standards", "Baggage Handling"}},
	{"check in", []string{"Passenger Experience Management", "Check-in & Boarding Procedures", "Airport Customer Service", "IATA Ticketing Standards", "Baggage Handling"}},
	{"ticketing", []string{"IATA Ticketing & Fares", "Airline Reservation Systems", "Passenger Experience", "Revenue Management Basics", "Customer Service"}},
	{"counter", []string{"Airport Terminal Operations", "Passenger Experience Management", "Check-in & Boarding Procedures", "Customer Relations", "Service Recovery"}},
	{"guest service", []string{"Passenger Experience Management", "Service Excellence", "Airport Terminal Operations", "Complaint Handling", "Cross-Cultural Communication"}},
}

// SkillsFor returns up to five degree skills relevant to title, sorted.
func SkillsFor(title string) []string {
	lower := strings.ToLower(title)
	set := map[string]struct{}{}
	for _, entry := range degreeSkills {
		if !strings.Contains(lower, entry.keyword) {
			continue
		}
		for _, s := range entry.skills {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	skills := make([]string, 0, len(set))
	for s := range set {
		skills = append(skills, s)
	}
	slices.Sort(skills)
	if len(skills) > maxSkillsPerJob {
		skills = skills[:maxSkillsPerJob]
	}
	return skills
}
