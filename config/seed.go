package config

import "whenwin/model"

// StarterEvents returns the built-in events loaded into an empty store at
// first run. Ids are plain numbers on purpose: legacy records carried
// numeric ids, and keeping a few around exercises the canonical-id handling.
func StarterEvents() []model.Event {
	return []model.Event{
		{
			ID:          "1",
			Title:       "Downtown Farmers Market",
			Description: "Fresh local produce, handmade goods and live acoustic sets every Saturday morning along Main Street.",
			Category:    "Community",
			Date:        "2026-09-05",
			Time:        "08:00",
			Location:    "Main Street Plaza",
			City:        "Evansville",
			State:       "IN",
			Price:       "Free",
			Organizer:   "Downtown Evansville Alliance",
			Attendees:   42,
			Image:       "https://picsum.photos/400/200?random=1",
		},
		{
			ID:          "2",
			Title:       "Riverside Jazz Night",
			Description: "An evening of live jazz on the riverfront with local food trucks and a cash bar.",
			Category:    "Music",
			Date:        "2026-09-12",
			Time:        "19:30",
			Location:    "Dress Plaza Riverfront",
			City:        "Evansville",
			State:       "IN",
			Price:       "$10",
			Organizer:   "River City Jazz Society",
			Attendees:   87,
			Image:       "https://picsum.photos/400/200?random=2",
		},
		{
			ID:          "3",
			Title:       "Community 5K Fun Run",
			Description: "A family-friendly 5K through Garvin Park. Walkers welcome; proceeds support local youth sports.",
			Category:    "Sports",
			Date:        "2026-09-19",
			Time:        "09:00",
			Location:    "Garvin Park",
			City:        "Evansville",
			State:       "IN",
			Price:       "FREE registration",
			Organizer:   "Anonymous",
			Attendees:   130,
			Image:       "https://picsum.photos/400/200?random=3",
		},
		{
			ID:          "4",
			Title:       "Intro to Pottery Workshop",
			Description: "Hands-on wheel-throwing basics for beginners. All materials provided, pieces fired and ready in two weeks.",
			Category:    "Arts & Culture",
			Date:        "2026-09-26",
			Time:        "14:00",
			Location:    "Arts Council Studio, 212 Main St",
			City:        "Evansville",
			State:       "IN",
			Price:       "$35",
			Organizer:   "Arts Council of Southwestern Indiana",
			Attendees:   12,
			Image:       "https://picsum.photos/400/200?random=4",
		},
		{
			ID:          "5",
			Title:       "Food Truck Festival",
			Description: "Over twenty food trucks, a beer garden and live music across two stages all afternoon.",
			Category:    "Food & Drink",
			Date:        "2026-10-03",
			Time:        "12:00",
			Location:    "Bosse Field Parking Grounds",
			City:        "Evansville",
			State:       "IN",
			Price:       "Free entry",
			Organizer:   "Evansville Food Truck Coalition",
			Attendees:   215,
			Image:       "https://picsum.photos/400/200?random=5",
		},
	}
}
