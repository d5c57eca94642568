package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	countryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Country",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"flag_emoji":  &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"city_count":  &graphql.Field{Type: graphql.Int},
			"venue_count": &graphql.Field{Type: graphql.Int},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"country_id":       &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"mosque_count":     &graphql.Field{Type: graphql.Int},
			"restaurant_count": &graphql.Field{Type: graphql.Int},
		},
	})

	mosqueRatingsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MosqueRatings",
		Fields: graphql.Fields{
			"prayer_facilities_rating": &graphql.Field{Type: graphql.Float},
			"cleanliness_rating":       &graphql.Field{Type: graphql.Float},
		},
	})

	restaurantRatingsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RestaurantRatings",
		Fields: graphql.Fields{
			"halal_certification_rating": &graphql.Field{Type: graphql.Float},
			"food_quality_rating":        &graphql.Field{Type: graphql.Float},
		},
	})

	venueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Venue",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"type":               &graphql.Field{Type: graphql.String},
			"name":               &graphql.Field{Type: graphql.String},
			"address":            &graphql.Field{Type: graphql.String},
			"city_id":            &graphql.Field{Type: graphql.String},
			"location":           &graphql.Field{Type: geoPointType},
			"overall_rating":     &graphql.Field{Type: graphql.Float},
			"review_count":       &graphql.Field{Type: graphql.Int},
			"mosque_ratings":     &graphql.Field{Type: mosqueRatingsType},
			"restaurant_ratings": &graphql.Field{Type: restaurantRatingsType},
			"distance_km":        &graphql.Field{Type: graphql.Float},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"venue_id":    &graphql.Field{Type: graphql.String},
			"user_name":   &graphql.Field{Type: graphql.String},
			"rating":      &graphql.Field{Type: graphql.Int},
			"comment":     &graphql.Field{Type: graphql.String},
			"visit_date":  &graphql.Field{Type: graphql.String},
			"is_verified": &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"countries": &graphql.Field{
				Type:        graphql.NewList(countryType),
				Description: "List all browsable countries",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Countries.List(p.Context)
				},
			},
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List a country's cities",
				Args: graphql.FieldConfigArgument{
					"country_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.ListByCountry(p.Context, p.Args["country_id"].(string))
				},
			},
			"venuesByCity": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "List venues in a city, optionally narrowed by search text and type",
				Args: graphql.FieldConfigArgument{
					"city_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"q":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"type":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "all"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Venues.QueryByCity(p.Context, domain.VenueQuery{
						CityID:     p.Args["city_id"].(string),
						SearchText: p.Args["q"].(string),
						Type:       domain.VenueType(p.Args["type"].(string)),
					})
				},
			},
			"venuesNearby": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "Venues within a radius of a coordinate, sorted by distance",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10.0},
					"type":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "all"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}
					return deps.Nearby.FindNearbyAt(p.Context, origin,
						p.Args["radius_km"].(float64),
						domain.VenueType(p.Args["type"].(string)))
				},
			},
			"venues": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "Resolve venues by ID; unknown ids are omitted",
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var ids []string
					for _, id := range strings.Split(p.Args["ids"].(string), ",") {
						if trimmed := strings.TrimSpace(id); trimmed != "" {
							ids = append(ids, trimmed)
						}
					}
					return deps.Venues.QueryByIDs(p.Context, ids)
				},
			},
			"venueReviews": &graphql.Field{
				Type:        graphql.NewList(reviewType),
				Description: "Newest reviews for a venue",
				Args: graphql.FieldConfigArgument{
					"venue_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Reviews.ListByVenue(p.Context,
						p.Args["venue_id"].(string), p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
