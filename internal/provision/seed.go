package provision

import (
	"context"
	"fmt"
	"net/http"

	f "github.com/fauna/faunadb-go/v4/faunadb"
	"github.com/pkg/errors"
)

// SeedUser is one example account.
type SeedUser struct {
	Email    string
	Password string
}

var (
	SeedUsers = []SeedUser{
		{Email: "alice@site.example", Password: "secret password"},
		{Email: "nancy@site.example", Password: "better password"},
	}
	SeedTodos = []string{"Todo 1", "Todo 2", "Todo 3"}
)

// Seeder fills an existing database with example users and todos using a
// server key.
type Seeder struct {
	client *f.FaunaClient
	report Reporter
}

func NewSeeder(serverKey, endpoint string, httpClient *http.Client, report Reporter) *Seeder {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Seeder{
		client: f.NewFaunaClient(serverKey, f.Endpoint(endpoint), f.HTTP(httpClient)),
		report: report,
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	for _, user := range SeedUsers {
		if err := ctx.Err(); err != nil {
			return err
		}
		subject := fmt.Sprintf("User %q", user.Email)
		res, err := s.client.Query(f.Create(f.Collection("User"), f.Obj{
			"credentials": f.Obj{"password": user.Password},
			"data":        f.Obj{"email": user.Email},
		}))
		if err != nil {
			return mapFaunaError(err, subject)
		}
		var ref f.RefV
		if err := res.At(f.ObjKey("ref")).Get(&ref); err != nil {
			return errors.Wrapf(err, "%s: read ref", subject)
		}
		s.report.Created(subject)

		titles := make(f.Arr, 0, len(SeedTodos))
		for _, title := range SeedTodos {
			titles = append(titles, title)
		}
		if _, err := s.client.Query(f.Map(titles, f.Lambda("title",
			f.Create(f.Collection("Todo"), f.Obj{"data": f.Obj{
				"title":     f.Var("title"),
				"completed": false,
				"user":      ref,
			}}),
		))); err != nil {
			return mapFaunaError(err, fmt.Sprintf("todos for %s", user.Email))
		}
		s.report.Created(fmt.Sprintf("%d todos for %s", len(SeedTodos), user.Email))
	}
	return nil
}
