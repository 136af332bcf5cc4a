package domain

import "time"

// SampleEvents returns the fixed reports the feed is seeded with, timestamped
// relative to now.
func SampleEvents(now time.Time) []EventReport {
	at := func(minutesAgo int) time.Time {
		return now.Add(-time.Duration(minutesAgo) * time.Minute).UTC()
	}
	return []EventReport{
		{
			ID:              "sample-1",
			UserDescription: "Huge traffic jam near Silk Board junction due to a broken down bus.",
			Location:        GeoLocation{Lat: 12.917, Lng: 77.624},
			Timestamp:       at(10),
			AI: Classification{
				Title:    "Heavy Traffic at Silk Board",
				Summary:  "A broken-down bus is causing a major traffic jam near the Silk Board junction.",
				Category: CategoryTraffic,
			},
		},
		{
			ID:              "sample-2",
			UserDescription: "Waterlogging in 5th block Koramangala after the heavy rain.",
			Location:        GeoLocation{Lat: 12.935, Lng: 77.624},
			Timestamp:       at(35),
			AI: Classification{
				Title:    "Waterlogging in Koramangala",
				Summary:  "Heavy rainfall has led to significant waterlogging in Koramangala 5th Block.",
				Category: CategoryCivicIssue,
			},
		},
		{
			ID:              "sample-3",
			UserDescription: "A free concert is happening at Cubbon Park near the central library.",
			Location:        GeoLocation{Lat: 12.975, Lng: 77.592},
			Timestamp:       at(90),
			AI: Classification{
				Title:    "Concert in Cubbon Park",
				Summary:  "A live music event is currently underway in Cubbon Park for the public.",
				Category: CategoryCommunityEvent,
			},
		},
		{
			ID:              "sample-4",
			UserDescription: "A large, dangerous pothole has formed on MG Road near the metro station.",
			Location:        GeoLocation{Lat: 12.9759, Lng: 77.6068},
			Timestamp:       at(120),
			AI: Classification{
				Title:    "Large Pothole on MG Road",
				Summary:  "A hazardous pothole requires immediate attention on MG Road, posing a risk to vehicles.",
				Category: CategorySafetyHazard,
			},
		},
	}
}
