package domain

// SeedConfig returns the fixed seed value for the shared configuration
// document. It is written once on first initialization and also serves
// as the read fallback when the store is unreachable, so the UI stays
// usable offline.
//
// Always returns a fresh copy; callers may mutate the result.
func SeedConfig() *Config {
	return &Config{
		MSLs: []MSL{
			{ID: "msl1", Name: "Khaldoon Sattar", Email: "khaldoon@denk.local", Manager: true},
			{ID: "msl2", Name: "Ahmed AbdulKareem", Email: "ahmed@denk.local"},
			{ID: "msl3", Name: "Ahmed Rabah", Email: "rabah@denk.local"},
			{ID: "msl4", Name: "Ali Kamil", Email: "ali@denk.local"},
		},
		MedReps: []MedRep{
			{Name: "Yaman Ali", Zone: "North"},
			{Name: "Mohammed Luqman", Zone: "Central"},
			{Name: "Erjwan Thaar", Zone: "South"},
			{Name: "Sabreen Majid", Zone: "East"},
			{Name: "Ibraheem Jumaa", Zone: "West"},
		},
		Products: []Product{
			{
				ID:   "panto",
				Name: "PantoDenk",
				Messages: []string{
					"A. Pantoprazole is as effective as esomeprazole to relieve symptoms of GERD after 4 weeks of treatment and superior regarding the prevention of symptomatic relapse.",
					"B. Pantoprazole does not have any Drug food interaction compared to esomeprazole.",
					"C. Pantoprazole has the least drug-drug interaction compared to all other PPI.",
					"D. Pantoprazole has the least effect on the ECL cells and does not cause gastric atrophy or metaplasia; safe on prolonged use.",
					"E. Rapid onset, dose linearity.",
					"F. Pregnancy category B",
				},
			},
		},
	}
}

// PlaceholderMessages are the default talking points assigned to a
// product created without any initial messages.
func PlaceholderMessages() []string {
	return []string{
		"Key benefit 1",
		"Key benefit 2",
		"Key benefit 3",
		"Clinical data",
		"Safety profile",
		"Usage recommendation",
	}
}
