package ingest

import (
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/document"
)

type builder func(r record) (string, document.Metadata)

var builders = map[collection.Kind]builder{
	collection.Hotels:      hotelDocument,
	collection.Attractions: attractionDocument,
	collection.Itineraries: itineraryDocument,
}

func hotelDocument(r record) (string, document.Metadata) {
	loc := r.obj("location")
	features := r.obj("features")
	reviews := r.obj("reviews")
	pricing := r.obj("pricing")

	md := document.Metadata{
		Name:      r.str("name"),
		Type:      features.str("type"),
		Location:  loc.str("city", "district"),
		Amenities: features.list("amenities"),
		Seasons:   lowerAll(r.list("best_months")),
		Price:     pricing.num("base_price_inr"),
		Rating:    reviews.num("avg_rating"),
	}
	text := lines(
		line("Hotel: %s", md.Name),
		line("Location: %s", md.Location),
		line("Type: %s", md.Type),
		line("Rating: %s/5", orNA(md.Rating)),
		line("Price: ₹%s per night", orNA(md.Price)),
		line("Amenities: %s", join(md.Amenities)),
		line("Best for: %s", join(r.list("best_for"))),
		line("Description: %s", join(reviews.list("common_praises"))),
	)
	return text, md
}

func attractionDocument(r record) (string, document.Metadata) {
	details := r.obj("details")

	activities := details.list("activities")
	if exp := r.obj("experience"); exp != nil {
		activities = exp.list("activities")
	}
	months := r.list("best_months")
	if len(months) == 0 {
		months = details.list("best_months")
	}

	md := document.Metadata{
		Name:      r.str("name"),
		Type:      details.str("type"),
		Location:  r.obj("location").str("city", "district"),
		Amenities: activities,
		Seasons:   lowerAll(months),
		Duration:  details.num("duration_hours"),
		EntryFee:  details.num("entry_fee_inr"),
	}
	if md.Location == "" {
		md.Location = r.str("location", "city")
	}
	text := lines(
		line("Attraction: %s", md.Name),
		line("Type: %s", md.Type),
		line("Activities: %s", join(activities)),
		line("Entry Fee: ₹%s", orNA(md.EntryFee)),
		line("Duration: %s hours", orNA(md.Duration)),
		line("Best months: %s", join(months)),
	)
	return text, md
}

func itineraryDocument(r record) (string, document.Metadata) {
	interests := r.list("interests")

	duration := r.num("duration_days", "days")
	stops := r.items("days")
	if len(stops) == 0 {
		stops = r.items("route")
	}
	if duration == nil && len(r.items("days")) > 0 {
		duration = document.Float(float64(len(r.items("days"))))
	}

	themes := []string{r.str("theme")}
	if themes[0] == "" {
		themes = interests
	}
	target := r.list("target_audience")
	if len(target) == 0 {
		target = interests
	}

	budget := r.num("budget")
	if b := r.obj("budget"); b != nil {
		budget = b.num("avg")
	}

	destinations := make([]string, 0, len(stops))
	for _, s := range stops {
		if m, ok := s.(map[string]any); ok {
			destinations = append(destinations, record(m).str("location", "place"))
			continue
		}
		if v := scalar(s); v != "" {
			destinations = append(destinations, v)
		}
	}
	months := r.list("best_months")

	md := document.Metadata{
		Name:      r.str("name"),
		Theme:     document.JoinList(themes),
		Location:  document.JoinList(destinations),
		Seasons:   lowerAll(months),
		Duration:  duration,
		BudgetAvg: budget,
	}
	text := lines(
		line("Package: %s", md.Name),
		line("Duration: %s days", orNA(duration)),
		line("Theme: %s", join(themes)),
		line("Target: %s", join(target)),
		line("Budget: ₹%s (avg)", orNA(budget)),
		line("Destinations: %s", join(destinations)),
		line("Best months: %s", join(months)),
	)
	return text, md
}
