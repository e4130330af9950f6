package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tourguide/internal/core/domain"
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

	attractionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attraction",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"city":     &graphql.Field{Type: graphql.String},
			"state":    &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	visitedLocationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VisitedLocation",
		Fields: graphql.Fields{
			"user_id":  &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"time_visited": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if vl, ok := p.Source.(domain.VisitedLocation); ok {
						return vl.TimeVisit, nil
					}
					return nil, nil
				},
			},
		},
	})

	rewardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserReward",
		Fields: graphql.Fields{
			"attraction":       &graphql.Field{Type: attractionType},
			"visited_location": &graphql.Field{Type: visitedLocationType},
			"reward_points":    &graphql.Field{Type: graphql.Int},
		},
	})

	attractionDistanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AttractionDistance",
		Fields: graphql.Fields{
			"attraction": &graphql.Field{Type: attractionType},
			"distance":   &graphql.Field{Type: graphql.Float, Description: "Statute miles"},
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyAttraction",
		Fields: graphql.Fields{
			"name":           &graphql.Field{Type: graphql.String},
			"latitude":       &graphql.Field{Type: graphql.Float},
			"longitude":      &graphql.Field{Type: graphql.Float},
			"user_latitude":  &graphql.Field{Type: graphql.Float},
			"user_longitude": &graphql.Field{Type: graphql.Float},
			"distance":       &graphql.Field{Type: graphql.Float},
			"reward_points":  &graphql.Field{Type: graphql.Int},
		},
	})

	sourceUser := func(p graphql.ResolveParams) (*domain.User, error) {
		u, ok := p.Source.(*domain.User)
		if !ok {
			return nil, fmt.Errorf("unexpected source %T", p.Source)
		}
		return u, nil
	}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"name":  &graphql.Field{Type: graphql.String},
			"phone": &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{
				Type:        visitedLocationType,
				Description: "Last known location; tracks the user once if there is none",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := sourceUser(p)
					if err != nil {
						return nil, err
					}
					return deps.Tracking.GetUserLocation(p.Context, u)
				},
			},
			"visitedLocations": &graphql.Field{
				Type: graphql.NewList(visitedLocationType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := sourceUser(p)
					if err != nil {
						return nil, err
					}
					return u.VisitedLocations(), nil
				},
			},
			"rewards": &graphql.Field{
				Type: graphql.NewList(rewardType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := sourceUser(p)
					if err != nil {
						return nil, err
					}
					return deps.Tracking.UserRewards(u), nil
				},
			},
			"rewardPoints": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := sourceUser(p)
					if err != nil {
						return nil, err
					}
					return deps.Tracking.TripRewardTotal(u), nil
				},
			},
			"nearbyAttractions": &graphql.Field{
				Type: graphql.NewList(nearbyType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := sourceUser(p)
					if err != nil {
						return nil, err
					}
					return deps.Attractions.NearbyAttractions(p.Context, u)
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"user": &graphql.Field{
				Type:        userType,
				Description: "Get a user by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Users.GetUser(p.Context, p.Args["name"].(string))
				},
			},
			"attractionsNear": &graphql.Field{
				Type:        graphql.NewList(attractionDistanceType),
				Description: "Closest attractions to a coordinate",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loc := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return deps.Attractions.RankNearestAttractions(p.Context, loc, p.Args["limit"].(int))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"trackUser": &graphql.Field{
				Type:        visitedLocationType,
				Description: "Run one tracking cycle for a user",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := deps.Users.GetUser(p.Context, p.Args["name"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Tracking.TrackLocation(p.Context, u)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
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
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
