package game

import "time"

// DefaultFarmer returns the demo farmer profile.
func DefaultFarmer() Farmer {
	return Farmer{
		Name:                "Rajesh Kumar",
		Location:            "Satara, Maharashtra",
		CropType:            "Mixed (Rice, Sugarcane)",
		FarmSize:            "5.2 acres",
		SustainabilityScore: 78,
		Level:               7,
		TotalPoints:         2450,
		GreenCredits:        340,
		Badges:              []string{"Organic Pioneer", "Water Saver", "Soil Guardian", "Bio Pest Controller"},
		Rank:                12,
		Guild:               "Basmati Brigade",
		Title:               "Dharti Rakshak",
		AuraHealth:          82,
		StreakDays:          15,
	}
}

// DefaultGuild returns the demo guild.
func DefaultGuild() Guild {
	return Guild{
		ID:               "1",
		Name:             "Basmati Brigade",
		Logo:             "🌾",
		Members:          24,
		Level:            5,
		CurrentChallenge: "Village-wide Drip Irrigation",
		Progress:         67,
		Rank:             3,
	}
}

// DefaultBossChallenge returns the current community boss.
func DefaultBossChallenge() BossChallenge {
	return BossChallenge{
		ID:           "chemical-asur",
		Name:         "Chemical Asur",
		Description:  "Unite to defeat excessive pesticide use in your region",
		Progress:     45,
		Participants: 156,
		Reward:       "Pest-Master Badge + 500 Green Credits",
		TimeLeft:     "12 days",
	}
}

// DefaultQuests returns the demo quest list.
func DefaultQuests() []Quest {
	return []Quest{
		{
			ID:          "1",
			Title:       "Switch to Bio-Pesticides",
			Description: "Replace chemical pesticides with neem oil and organic alternatives for 3 weeks",
			Category:    "Pest Management",
			Difficulty:  "Medium",
			Points:      150,
			Progress:    65,
			Deadline:    day(2025, time.February, 15),
			Type:        QuestIndividual,
			Reward:      "Pest-Buster Badge",
		},
		{
			ID:          "2",
			Title:       "Guild Challenge: Village Drip System",
			Description: "Work with Basmati Brigade to install drip irrigation across 50 acres",
			Category:    "Water Management",
			Difficulty:  "Hard",
			Points:      300,
			Progress:    67,
			Deadline:    day(2025, time.March, 1),
			Type:        QuestGuild,
			Reward:      "Water Guardian Title",
		},
		{
			ID:          "3",
			Title:       "Defeat the Chemical Asur",
			Description: "Join the community boss battle against excessive pesticide use",
			Category:    "Community Challenge",
			Difficulty:  "Hard",
			Points:      500,
			Progress:    45,
			Deadline:    day(2025, time.February, 20),
			Type:        QuestBoss,
			Reward:      "Asur Slayer Badge + 500 Credits",
		},
		{
			ID:          "4",
			Title:       "Composting Challenge",
			Description: "Create organic compost using farm waste and kitchen scraps",
			Category:    "Soil Health",
			Difficulty:  "Easy",
			Points:      100,
			Progress:    100,
			Deadline:    day(2025, time.January, 20),
			Completed:   true,
			Type:        QuestIndividual,
		},
	}
}

// DefaultLeaderboard returns the regional leaderboard.
func DefaultLeaderboard() []LeaderboardEntry {
	return []LeaderboardEntry{
		{Name: "Amit Patil", Location: "Pune", Score: 3200, Rank: 1, Avatar: "AP", Title: "Maha Dharti Rakshak", Guild: "Millet Mavericks"},
		{Name: "Sunita Devi", Location: "Kolhapur", Score: 2980, Rank: 2, Avatar: "SD", Title: "Prakriti Sevak", Guild: "Green Guardians"},
		{Name: "Mohan Singh", Location: "Nashik", Score: 2750, Rank: 3, Avatar: "MS", Title: "Jal Rakshak", Guild: "Water Warriors"},
		{Name: "Priya Sharma", Location: "Aurangabad", Score: 2650, Rank: 4, Avatar: "PS", Title: "Bhoomi Mata", Guild: "Soil Sisters"},
		{Name: "Rajesh Kumar", Location: "Satara", Score: 2450, Rank: 5, Avatar: "RK", Title: "Dharti Rakshak", Guild: "Basmati Brigade"},
	}
}

// DefaultRiddle returns today's riddle.
func DefaultRiddle() DailyRiddle {
	return DailyRiddle{
		Question: "Which traditional companion plant helps repel aphids from tomatoes?",
		Options:  []string{"Marigold", "Mint", "Basil", "All of the above"},
		Correct:  3,
		Reward:   "25 Green Credits + Knowledge Keeper Badge",
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultMarketItems returns the green-credits mandi listing.
func DefaultMarketItems() []MarketItem {
	return []MarketItem{
		{ID: "fertilizer-discount", Name: "Organic Fertilizer Discount", Category: CategoryBenefit, Cost: 200, Description: "20% off next purchase"},
		{ID: "seed-upgrade", Name: "Seed Quality Upgrade", Category: CategoryBenefit, Cost: 150, Description: "Premium seeds at regular price"},
		{ID: "loan-interest", Name: "Loan Interest Reduction", Category: CategoryBenefit, Cost: 500, Description: "0.5% reduction for 6 months"},
		{ID: "ipm-masterclass", Name: "Advanced IPM Masterclass", Category: CategoryKnowledge, Cost: 100, Description: "Expert video series"},
		{ID: "soil-testing-guide", Name: "Soil Testing Guide", Category: CategoryKnowledge, Cost: 75, Description: "DIY testing methods"},
		{ID: "price-predictions", Name: "Market Price Predictions", Category: CategoryKnowledge, Cost: 250, Description: "AI-powered insights"},
		{ID: "avatar-frame", Name: "Premium Avatar Frame", Category: CategoryVirtual, Cost: 50, Description: "Golden border for profile"},
		{ID: "farm-decoration", Name: "Farm Decoration Pack", Category: CategoryVirtual, Cost: 75, Description: "Beautify your virtual farm"},
		{ID: "guild-badge", Name: "Custom Guild Badge", Category: CategoryVirtual, Cost: 125, Description: "Design your guild emblem"},
	}
}

// DefaultSchemes returns the scheme eligibility tracker.
func DefaultSchemes() []Scheme {
	return []Scheme{
		{Name: "Solar Pump Subsidy", Requirement: "Sustainability Score: 80+", Progress: 85, Status: SchemeAlmostEligible},
		{Name: "Organic Certification Support", Requirement: "Organic Practices: 90%+", Progress: 92, Status: SchemeEligible},
		{Name: "Drip Irrigation Subsidy", Requirement: "Water Conservation Score: 70+", Progress: 67, Status: SchemeInProgress},
		{Name: "Crop Insurance Premium Reduction", Requirement: "Risk Management Score: 75+", Progress: 78, Status: SchemeEligible},
	}
}

// DefaultHelpRequests returns the open knowledge-exchange requests.
func DefaultHelpRequests() []HelpRequest {
	return []HelpRequest{
		{ID: "1", Farmer: "Priya Sharma", Problem: "White flies attacking my tomato crop", Location: "Aurangabad", Bids: 3, Reward: 50, Posted: "2 hours ago", Icon: "🍅"},
		{ID: "2", Farmer: "Mohan Singh", Problem: "Soil pH too alkaline, need organic solutions", Location: "Nashik", Bids: 7, Reward: 75, Posted: "5 hours ago", Icon: "🌱"},
		{ID: "3", Farmer: "Sunita Devi", Problem: "Best intercropping options for sugarcane", Location: "Kolhapur", Bids: 2, Reward: 60, Posted: "1 day ago", Icon: "🎋"},
	}
}

// DefaultGurus returns the top knowledge gurus.
func DefaultGurus() []Guru {
	return []Guru{
		{Name: "Dr. Ramesh Patil", GuruPoints: 2450, Solutions: 89, Specialty: "Organic Pest Control"},
		{Name: "Kavita Deshmukh", GuruPoints: 2100, Solutions: 76, Specialty: "Soil Management"},
		{Name: "Suresh Kumar", GuruPoints: 1890, Solutions: 65, Specialty: "Water Conservation"},
	}
}
