package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ServiceZone",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"city_name": &graphql.Field{Type: graphql.String},
			"radius_km": &graphql.Field{Type: graphql.Float},
			"center":    &graphql.Field{Type: coordinateType},
		},
	})

	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"rating":       &graphql.Field{Type: graphql.Float},
			"review_count": &graphql.Field{Type: graphql.Int},
			"price_amount": &graphql.Field{Type: graphql.Float},
			"price_unit":   &graphql.Field{Type: graphql.String},
			"active":       &graphql.Field{Type: graphql.Boolean},
			"zones":        &graphql.Field{Type: graphql.NewList(zoneType)},
		},
	})

	scoredListingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScoredListing",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"rating":       &graphql.Field{Type: graphql.Float},
			"review_count": &graphql.Field{Type: graphql.Int},
			"price_amount": &graphql.Field{Type: graphql.Float},
			"price_unit":   &graphql.Field{Type: graphql.String},
			"distance_km":  &graphql.Field{Type: graphql.Float},
			"tier":         &graphql.Field{Type: graphql.String},
			"zones":        &graphql.Field{Type: graphql.NewList(zoneType)},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center":      &graphql.Field{Type: coordinateType},
			"lat_span_km": &graphql.Field{Type: graphql.Float},
			"lon_span_km": &graphql.Field{Type: graphql.Float},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"listings": &graphql.Field{Type: graphql.NewList(scoredListingType)},
			"viewport": &graphql.Field{Type: viewportType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"search": &graphql.Field{
				Type:        searchResultType,
				Description: "Evaluate a discovery query and return ranked listings with a fitted viewport",
				Args: graphql.FieldConfigArgument{
					"q":          &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"city":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"lat":        &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":        &graphql.ArgumentConfig{Type: graphql.Float},
					"radius_km":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"min_rating": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"sort":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "distance"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					query := deps.newQuery()
					query.SearchText = p.Args["q"].(string)
					query.CityName = p.Args["city"].(string)
					query.MinRating = p.Args["min_rating"].(float64)
					if radius := p.Args["radius_km"].(float64); radius > 0 {
						query.RadiusKm = radius
					}
					sortBy, err := domain.ParseSortBy(p.Args["sort"].(string))
					if err != nil {
						return nil, err
					}
					query.SortBy = sortBy

					var userLocation *domain.Coordinate
					lat, latOK := p.Args["lat"].(float64)
					lon, lonOK := p.Args["lon"].(float64)
					if latOK && lonOK {
						userLocation = &domain.Coordinate{Lat: lat, Lon: lon}
					}

					result, err := deps.Discovery.Search(p.Context, query, userLocation)
					if err != nil {
						return nil, err
					}

					// Flatten the embedded Listing for the default resolver
					listings := make([]map[string]interface{}, 0, len(result.Listings))
					for _, l := range result.Listings {
						m := map[string]interface{}{
							"id":           l.ID,
							"title":        l.Title,
							"category":     l.Category,
							"rating":       l.Rating,
							"review_count": l.ReviewCount,
							"price_amount": l.PriceAmount,
							"price_unit":   l.PriceUnit,
							"tier":         string(l.Tier),
							"zones":        l.Zones,
						}
						if l.DistanceKm != nil {
							m["distance_km"] = *l.DistanceKm
						}
						listings = append(listings, m)
					}
					return map[string]interface{}{
						"listings": listings,
						"viewport": result.Viewport,
					}, nil
				},
			},
			"suggest": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Search suggestions for a text prefix",
				Args: graphql.FieldConfigArgument{
					"prefix": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					prefix := p.Args["prefix"].(string)
					limit := p.Args["limit"].(int)
					return deps.Suggestions.Suggest(prefix, limit), nil
				},
			},
			"listing": &graphql.Field{
				Type:        listingType,
				Description: "Get a listing by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Discovery.GetListing(p.Context, id)
				},
			},
			"listingZones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "Service zones of a listing",
				Args: graphql.FieldConfigArgument{
					"listing_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["listing_id"].(string)
					return deps.Discovery.ZonesFor(p.Context, id)
				},
			},
			"categories": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct active listing categories",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Listings.CategoryNames(p.Context)
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
